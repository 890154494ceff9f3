// Package alerts derives utilization anomalies from a record set. The
// engine is a pure function of its records, the selected months and the
// reference time.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/workforce/internal/domain/model"
)

// Rule codes identify which check produced an alert.
const (
	RuleCurrentShortfallFullTime = "current_shortfall_full_time"
	RuleCurrentShortfallPartTime = "current_shortfall_part_time"
	RuleClosingLowFullTime       = "closing_low_full_time"
	RuleClosingExcessPartTime    = "closing_excess_part_time"
	RuleNoActivity               = "no_significant_activity"
	RuleWeekendWork              = "weekend_work"
	RuleExcessiveDay             = "excessive_day"
)

const (
	fullTimeDailyHours = 8
	partTimeDailyHours = 4
	// shortfallTolerance is how far below the expected hours a consultant
	// may be before an alert fires.
	shortfallTolerance  = 2.0
	closingFullTimeMin  = 140.0
	closingPartTimeMax  = 80.0
	noActivityThreshold = 20.0
	maxDailyHours       = 12.0
)

// Evaluate runs every rule for each consultant in records and returns the
// alerts ordered critical, warning, info. months is the active month
// selection (YYYY-MM) and now decides which month is current.
func Evaluate(records []model.Record, months []string, now time.Time) []model.Alert {
	if len(records) == 0 {
		return nil
	}

	singleMonth := len(months) == 1
	currentMonth := singleMonth && isCurrentMonth(months[0], now)

	businessDays := 0
	if currentMonth {
		businessDays = businessDaysThrough(now)
	}
	expectedFT := float64(businessDays * fullTimeDailyHours)
	expectedPT := float64(businessDays * partTimeDailyHours)

	var out []model.Alert
	for _, c := range aggregate(records) {
		if singleMonth {
			if currentMonth {
				out = append(out, currentMonthAlerts(c, expectedFT, expectedPT)...)
			} else {
				out = append(out, closingAlerts(c)...)
			}
		}

		if !currentMonth && c.hours < noActivityThreshold {
			out = append(out, model.Alert{
				Severity:         model.SeverityCritical,
				Rule:             RuleNoActivity,
				Title:            "No significant activity",
				Consultant:       c.name,
				Detail:           fmt.Sprintf("Less than %.0fh logged.", noActivityThreshold),
				MetricLabel:      fmt.Sprintf("%.0fh", c.hours),
				RelatedRecordIDs: c.allIDs,
			})
		}

		if c.weekendHours > 0 {
			out = append(out, model.Alert{
				Severity:         model.SeverityInfo,
				Rule:             RuleWeekendWork,
				Title:            "Weekend work",
				Consultant:       c.name,
				Detail:           "Logged hours on Saturday or Sunday.",
				MetricLabel:      fmt.Sprintf("%.0fh", c.weekendHours),
				RelatedRecordIDs: c.weekendIDs,
			})
		}

		if a, ok := excessiveDays(c); ok {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

func currentMonthAlerts(c *consultantLoad, expectedFT, expectedPT float64) []model.Alert {
	var out []model.Alert
	if c.fullTime() && expectedFT-c.hours > shortfallTolerance {
		out = append(out, model.Alert{
			Severity:         model.SeverityCritical,
			Rule:             RuleCurrentShortfallFullTime,
			Title:            "Behind on logging (to date)",
			Consultant:       c.name,
			Detail:           fmt.Sprintf("Should have %.0fh by today. Missing %.1fh.", expectedFT, expectedFT-c.hours),
			MetricLabel:      fmt.Sprintf("%.1f / %.0fh", c.hours, expectedFT),
			RelatedRecordIDs: c.allIDs,
		})
	}
	if c.partTime() && expectedPT-c.hours > shortfallTolerance {
		out = append(out, model.Alert{
			Severity:         model.SeverityWarning,
			Rule:             RuleCurrentShortfallPartTime,
			Title:            "Part-time behind on logging",
			Consultant:       c.name,
			Detail:           fmt.Sprintf("Should have %.0fh.", expectedPT),
			MetricLabel:      fmt.Sprintf("%.1f / %.0fh", c.hours, expectedPT),
			RelatedRecordIDs: c.allIDs,
		})
	}
	return out
}

func closingAlerts(c *consultantLoad) []model.Alert {
	var out []model.Alert
	if c.fullTime() && c.hours < closingFullTimeMin {
		out = append(out, model.Alert{
			Severity:         model.SeverityCritical,
			Rule:             RuleClosingLowFullTime,
			Title:            "Low utilization (closing)",
			Consultant:       c.name,
			Detail:           fmt.Sprintf("Closed the month under %.0fh.", closingFullTimeMin),
			MetricLabel:      fmt.Sprintf("%.0fh", c.hours),
			RelatedRecordIDs: c.allIDs,
		})
	}
	if c.partTime() && c.hours > closingPartTimeMax {
		out = append(out, model.Alert{
			Severity:         model.SeverityWarning,
			Rule:             RuleClosingExcessPartTime,
			Title:            "Excess hours (part time)",
			Consultant:       c.name,
			Detail:           fmt.Sprintf("Exceeded the %.0fh limit.", closingPartTimeMax),
			MetricLabel:      fmt.Sprintf("+%.0fh", c.hours-closingPartTimeMax),
			RelatedRecordIDs: c.allIDs,
		})
	}
	return out
}

// excessiveDays reports days above maxDailyHours, carrying only the ids
// logged on those days.
func excessiveDays(c *consultantLoad) (model.Alert, bool) {
	var (
		heavy int
		ids   []string
	)
	for _, day := range c.days {
		if c.dayLoad[day] > maxDailyHours {
			heavy++
			ids = append(ids, c.dayIDs[day]...)
		}
	}
	if heavy == 0 {
		return model.Alert{}, false
	}
	return model.Alert{
		Severity:         model.SeverityWarning,
		Rule:             RuleExcessiveDay,
		Title:            fmt.Sprintf("Excessive workday (>%.0fh)", maxDailyHours),
		Consultant:       c.name,
		Detail:           fmt.Sprintf("Found %d days over %.0f hours.", heavy, maxDailyHours),
		MetricLabel:      fmt.Sprintf("%d days", heavy),
		RelatedRecordIDs: ids,
	}, true
}
