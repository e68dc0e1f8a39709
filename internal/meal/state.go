package meal

// Kind names one of the four display states.
type Kind string

const (
	KindLoading  Kind = "loading"
	KindError    Kind = "error"
	KindMealList Kind = "has-meal"
	KindNoMeal   Kind = "no-meal"
)

// Kinds lists every display state in page order.
var Kinds = []Kind{KindLoading, KindError, KindMealList, KindNoMeal}

// SectionID returns the stable element handle of the view for k.
func SectionID(k Kind) string {
	switch k {
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindMealList:
		return "mealInfo"
	case KindNoMeal:
		return "noMeal"
	}
	return ""
}

// State is exactly one of Loading, Error, MealList or NoMeal.
type State interface {
	Kind() Kind
}

// Loading is shown while a fetch is in flight.
type Loading struct{}

func (Loading) Kind() Kind { return KindLoading }

// Error carries a user-facing message and optional diagnostic details.
type Error struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (Error) Kind() Kind { return KindError }

// MealList is the lunch menu for Date. Label is the localized date.
type MealList struct {
	Date  string   `json:"date"`
	Label string   `json:"label"`
	Items []string `json:"items"`
}

func (MealList) Kind() Kind { return KindMealList }

// Title is the heading shown above the menu.
func (m MealList) Title() string {
	return m.Label + " 급식정보"
}

// NoMeal means the API reported no meal records for the day.
type NoMeal struct{}

func (NoMeal) Kind() Kind { return KindNoMeal }
