package dadata

import "slices"

type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusLiquidating  Status = "LIQUIDATING"
	StatusLiquidated   Status = "LIQUIDATED"
	StatusBankrupt     Status = "BANKRUPT"
	StatusSuspended    Status = "SUSPENDED"
	StatusReorganizing Status = "REORGANIZING"
)

var statuses = []Status{
	StatusActive,
	StatusLiquidating,
	StatusLiquidated,
	StatusBankrupt,
	StatusSuspended,
	StatusReorganizing,
}

// Statuses returns the registration statuses accepted by the party filter,
// in the order the registry documents them.
func Statuses() []Status {
	return slices.Clone(statuses)
}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

type EntityType string

const (
	EntityTypeLegal      EntityType = "LEGAL"
	EntityTypeIndividual EntityType = "INDIVIDUAL"
)

var entityTypes = []EntityType{EntityTypeLegal, EntityTypeIndividual}

func (t EntityType) Valid() bool {
	return slices.Contains(entityTypes, t)
}

type StatusFilter struct {
	Status Status `json:"status"`
}

// PartyRequest is the body POSTed to the suggestion endpoint.
type PartyRequest struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Filters []StatusFilter `json:"filters,omitempty"`
	Type    EntityType     `json:"type,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is one candidate party. Data is left untyped: the registry adds
// and drops keys between API versions and only a handful are read.
type Suggestion struct {
	Value string         `json:"value"`
	Data  map[string]any `json:"data"`
}

type CompanyRecord struct {
	Value            string `json:"value"`
	UNP              string `json:"unp"`
	RegistrationDate string `json:"registration_date"`
	RemovalDate      string `json:"removal_date"`
	Status           string `json:"status"`
	FullNameRu       string `json:"full_name_ru"`
	TradeNameRu      string `json:"trade_name_ru"`
	Address          string `json:"address"`
	OKED             string `json:"oked"`
	OKEDName         string `json:"oked_name"`
}

// Columns is the header of every persisted company table.
var Columns = []string{
	"value",
	"unp",
	"registration_date",
	"removal_date",
	"status",
	"full_name_ru",
	"trade_name_ru",
	"address",
	"oked",
	"oked_name",
}

// Row returns the record's fields in Columns order.
func (r CompanyRecord) Row() []string {
	return []string{
		r.Value,
		r.UNP,
		r.RegistrationDate,
		r.RemovalDate,
		r.Status,
		r.FullNameRu,
		r.TradeNameRu,
		r.Address,
		r.OKED,
		r.OKEDName,
	}
}

// RecordFromRow is the inverse of Row. Short rows leave trailing fields empty.
func RecordFromRow(row []string) CompanyRecord {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}

		return ""
	}

	return CompanyRecord{
		Value:            field(0),
		UNP:              field(1),
		RegistrationDate: field(2),
		RemovalDate:      field(3),
		Status:           field(4),
		FullNameRu:       field(5),
		TradeNameRu:      field(6),
		Address:          field(7),
		OKED:             field(8),
		OKEDName:         field(9),
	}
}
