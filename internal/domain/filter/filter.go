// Package filter narrows a record set the way the dashboard selectors do.
package filter

import (
	"sort"
	"strings"

	"github.com/okian/workforce/internal/domain/model"
)

// NoRecordType labels records without a record type in selectors.
const NoRecordType = "N/A"

// Criteria is the active selection. Empty lists select everything.
type Criteria struct {
	Months          []string
	Clients         []string
	Consultants     []string
	RecordTypes     []string
	ConsultantTypes []string
	// Search matches project, description and both ticket ids.
	Search string
	// IDs pins the result to these records, bypassing every selector
	// except Search.
	IDs []string
}

// Filter applies Criteria to records.
type Filter struct {
	hidden map[string]struct{}
}

// New creates a Filter. Consultant types in hidden are left out unless a
// consultant type is explicitly selected.
func New(hidden ...string) *Filter {
	f := &Filter{hidden: make(map[string]struct{}, len(hidden))}
	for _, h := range hidden {
		if h = strings.TrimSpace(h); h != "" {
			f.hidden[strings.ToLower(h)] = struct{}{}
		}
	}
	return f
}

// Apply returns the records matching c in their original order.
func (f *Filter) Apply(records []model.Record, c Criteria) []model.Record {
	var (
		ids         = set(c.IDs)
		months      = set(c.Months)
		clients     = set(c.Clients)
		consultants = set(c.Consultants)
		recordTypes = set(c.RecordTypes)
		types       = set(c.ConsultantTypes)
		term        = strings.ToLower(strings.TrimSpace(c.Search))
	)

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if ids != nil {
			if _, ok := ids[r.ID]; !ok {
				continue
			}
		} else if !f.selected(r, months, clients, consultants, recordTypes, types) {
			continue
		}
		if term != "" && !matches(r, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f *Filter) selected(r model.Record, months, clients, consultants, recordTypes, types map[string]struct{}) bool {
	if !in(months, r.Month()) || !in(clients, r.Client) || !in(consultants, r.Consultant) {
		return false
	}
	if !in(recordTypes, orDefault(r.RecordType, NoRecordType)) {
		return false
	}
	if types != nil {
		return in(types, orDefault(r.ConsultantType, model.UndefinedCategory))
	}
	_, hidden := f.hidden[strings.ToLower(r.ConsultantType)]
	return !hidden
}

func matches(r model.Record, term string) bool {
	for _, v := range []string{r.Project, r.Description, r.TicketID, r.InternalTicketID} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// Months lists the distinct YYYY-MM tokens in records, newest first.
func Months(records []model.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		seen[r.Month()] = struct{}{}
	}
	out := keys(seen)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Options are the distinct selector values present in a record set.
type Options struct {
	Clients         []string `json:"clients"`
	Consultants     []string `json:"consultants"`
	RecordTypes     []string `json:"recordTypes"`
	ConsultantTypes []string `json:"consultantTypes"`
	Months          []string `json:"months"`
}

// Values collects sorted selector values from records.
func Values(records []model.Record) Options {
	clients := map[string]struct{}{}
	consultants := map[string]struct{}{}
	recordTypes := map[string]struct{}{}
	types := map[string]struct{}{}
	for _, r := range records {
		clients[r.Client] = struct{}{}
		consultants[r.Consultant] = struct{}{}
		recordTypes[orDefault(r.RecordType, NoRecordType)] = struct{}{}
		types[orDefault(r.ConsultantType, model.UndefinedCategory)] = struct{}{}
	}
	return Options{
		Clients:         sorted(clients),
		Consultants:     sorted(consultants),
		RecordTypes:     sorted(recordTypes),
		ConsultantTypes: sorted(types),
		Months:          Months(records),
	}
}

func set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// in treats a nil set as "everything".
func in(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sorted(m map[string]struct{}) []string {
	out := keys(m)
	sort.Strings(out)
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
