// Package summary prepares the aggregate figures sent to a text model and
// defines the narrative report it returns.
package summary

import (
	"context"
	"errors"

	"github.com/okian/workforce/internal/domain/stats"
)

const topClients = 5

// ErrDisabled reports that no summarizer is configured.
var ErrDisabled = errors.New("narrative summary disabled")

// Input is the aggregate view a summarizer sees. Raw records never leave
// the service.
type Input struct {
	TotalHours         float64       `json:"total_hours"`
	ActiveConsultants  int           `json:"active_consultants"`
	TopClient          string        `json:"top_client"`
	ClientDistribution []stats.Share `json:"client_distribution"`
	ConsultantLoad     []stats.Share `json:"consultant_load"`
}

// Report is the narrative returned by a summarizer.
type Report struct {
	Summary         string   `json:"summary"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// Summarizer turns aggregate figures into a Report.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (Report, error)
}

// Fallback is returned when a model answer cannot be understood.
func Fallback() Report {
	return Report{
		Summary:         "The automatic analysis could not be generated.",
		Risks:           []string{},
		Recommendations: []string{"Check the API key and try again."},
	}
}

// BuildInput reduces a stats summary to the figures a summarizer needs:
// the five largest clients and every consultant's total.
func BuildInput(s stats.Summary) Input {
	clients := s.ByClient
	if len(clients) > topClients {
		clients = clients[:topClients]
	}
	load := make([]stats.Share, 0, len(s.ByConsultant))
	for _, c := range s.ByConsultant {
		load = append(load, stats.Share{Name: c.Name, Hours: c.Total})
	}
	return Input{
		TotalHours:         s.KPI.TotalHours,
		ActiveConsultants:  s.KPI.TotalConsultants,
		TopClient:          s.KPI.TopClient,
		ClientDistribution: append([]stats.Share(nil), clients...),
		ConsultantLoad:     load,
	}
}
