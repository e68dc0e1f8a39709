package meal

import (
	"regexp"
	"strings"

	"school-meal/internal/neis"
)

// NoMenuText is the single item shown when the day has records but no lunch menu.
const NoMenuText = "급식 메뉴 정보가 없습니다."

var lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// Only these three entities are decoded; anything else stays as sent.
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// ParseMenuItems splits a raw DDISH_NM value into trimmed, non-empty dish names.
func ParseMenuItems(dishes string) []string {
	s := lineBreakTag.ReplaceAllString(dishes, "\n")
	s = entityReplacer.Replace(s)

	var items []string
	for _, piece := range strings.Split(s, "\n") {
		if item := strings.TrimSpace(piece); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// FindLunch returns the first lunch record, if any.
func FindLunch(records []neis.MealRecord) (neis.MealRecord, bool) {
	for _, r := range records {
		if r.MealCode == neis.LunchCode {
			return r, true
		}
	}
	return neis.MealRecord{}, false
}

// Extract turns the fetched records for date into the final display state.
// NoMeal is reserved for an empty record list; every other outcome is a
// MealList, possibly holding only NoMenuText.
func Extract(date string, records []neis.MealRecord) State {
	if len(records) == 0 {
		return NoMeal{}
	}

	label, err := FormatDate(date)
	if err != nil {
		label = date
	}

	var items []string
	if lunch, ok := FindLunch(records); ok && lunch.Dishes != "" {
		items = ParseMenuItems(lunch.Dishes)
	}
	if len(items) == 0 {
		items = []string{NoMenuText}
	}

	return MealList{Date: date, Label: label, Items: items}
}
