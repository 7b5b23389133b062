package dadata

import (
	"encoding/json"
	"errors"
	"strconv"
)

var ErrNoSuggestions = errors.New("response has no suggestions")

// Normalize flattens the suggestions into company records, one per suggestion
// and in response order. A nil response or an empty suggestion list yields an
// empty table together with ErrNoSuggestions; callers treat that as a
// diagnostic, not a failure.
func Normalize(resp *SuggestionsResponse) ([]CompanyRecord, error) {
	if resp == nil || len(resp.Suggestions) == 0 {
		return []CompanyRecord{}, ErrNoSuggestions
	}

	records := make([]CompanyRecord, 0, len(resp.Suggestions))

	for i := range resp.Suggestions {
		records = append(records, TransformSuggestion(&resp.Suggestions[i]))
	}

	return records, nil
}

func TransformSuggestion(s *Suggestion) CompanyRecord {
	data := s.Data

	return CompanyRecord{
		Value:            s.Value,
		UNP:              stringField(data, "unp"),
		RegistrationDate: stringField(data, "registration_date"),
		RemovalDate:      stringField(data, "removal_date"),
		Status:           stringField(data, "status"),
		FullNameRu:       stringField(data, "full_name_ru"),
		TradeNameRu:      stringField(data, "trade_name_ru"),
		Address:          stringField(data, "address"),
		OKED:             stringField(data, "oked"),
		OKEDName:         stringField(data, "oked_name"),
	}
}

// stringField reads a scalar as text. Absent keys and nulls become "".
func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}

		return string(b)
	}
}
