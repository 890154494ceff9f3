// Package model contains domain models passed between layers.
package model

// Sentinel values used when a column is absent or blank.
const (
	UnknownName       = "Unknown"
	NoTask            = "No Task"
	UndefinedCategory = "Undefined"
)

// Record is one normalized work-log entry. It is the unit of every
// downstream aggregation and alert.
type Record struct {
	// ID is unique within one ingestion batch only.
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Consultant  string  `json:"consultant"`
	Client      string  `json:"client"`
	Project     string  `json:"project"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`

	RecordType       string `json:"recordType,omitempty"`
	TicketID         string `json:"ticketId,omitempty"`
	InternalTicketID string `json:"internalTicketId,omitempty"`
	Department       string `json:"department,omitempty"`
	ConsultantType   string `json:"consultantType,omitempty"`
}

// Month returns the YYYY-MM prefix of the record date, or the whole date
// when it is shorter.
func (r Record) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}
