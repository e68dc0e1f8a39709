package neis

import (
	"encoding/json"
)

// LunchCode is the MMEAL_SC_CODE value for lunch.
const LunchCode = "2"

// codeNoData is the result code NEIS uses for "no matching information".
const codeNoData = "INFO-200"

// MealRecord is one row of the mealServiceDietInfo response.
type MealRecord struct {
	MealCode   string `json:"MMEAL_SC_CODE"`
	MealName   string `json:"MMEAL_SC_NM"`
	Dishes     string `json:"DDISH_NM"`
	Date       string `json:"MLSV_YMD"`
	SchoolName string `json:"SCHUL_NM"`
	Calories   string `json:"CAL_INFO"`
}

// Response is one of the two known payload shapes: NoData or Rows.
type Response interface {
	records() []MealRecord
}

// NoData is the {"RESULT":{"CODE":"INFO-200"}} payload.
type NoData struct {
	Code    string
	Message string
}

func (NoData) records() []MealRecord { return nil }

// Rows is the {"mealServiceDietInfo":[head,{"row":[...]}]} payload.
type Rows struct {
	Records []MealRecord
}

func (r Rows) records() []MealRecord { return r.Records }

type resultHead struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type envelope struct {
	Result              *resultHead       `json:"RESULT"`
	MealServiceDietInfo []json.RawMessage `json:"mealServiceDietInfo"`
}

type rowSection struct {
	Row *[]MealRecord `json:"row"`
}

// DecodeResponse classifies a raw payload. Malformed JSON yields a
// *ParseError, any unrecognised shape a *NotFoundError.
func DecodeResponse(body []byte) (Response, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Err: err}
	}

	if env.Result != nil && env.Result.Code == codeNoData {
		return NoData{Code: env.Result.Code, Message: env.Result.Message}, nil
	}

	if len(env.MealServiceDietInfo) > 1 {
		var section rowSection
		if err := json.Unmarshal(env.MealServiceDietInfo[1], &section); err != nil {
			return nil, &ParseError{Err: err}
		}
		if section.Row != nil {
			return Rows{Records: *section.Row}, nil
		}
	}

	return nil, &NotFoundError{}
}
