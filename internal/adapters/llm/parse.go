package llm

import (
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/okian/workforce/internal/domain/summary"
)

// ParseReport reads a model answer into a Report. Markdown fences are
// stripped first; malformed JSON is repaired, then read as Hjson. An
// answer that still cannot be read, or carries no summary, yields the
// fallback report.
func ParseReport(text string) summary.Report {
	clean := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(text))
	if clean == "" {
		return summary.Fallback()
	}

	var r summary.Report
	if err := json.Unmarshal([]byte(clean), &r); err == nil && r.Summary != "" {
		return normalize(r)
	}

	if repaired, err := jsonrepair.RepairJSON(clean); err == nil {
		r = summary.Report{}
		if err := json.Unmarshal([]byte(repaired), &r); err == nil && r.Summary != "" {
			return normalize(r)
		}
	}

	r = summary.Report{}
	if err := hjson.Unmarshal([]byte(clean), &r); err == nil && r.Summary != "" {
		return normalize(r)
	}
	return summary.Fallback()
}

func normalize(r summary.Report) summary.Report {
	if r.Risks == nil {
		r.Risks = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	return r
}
