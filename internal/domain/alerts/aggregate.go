package alerts

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/workforce/internal/domain/model"
)

// consultantLoad is the per-consultant aggregate the rules run on.
type consultantLoad struct {
	name         string
	category     string
	hours        float64
	allIDs       []string
	weekendHours float64
	weekendIDs   []string
	// days keeps first-seen order so heavy-day ids stay in source order.
	days    []string
	dayLoad map[string]float64
	dayIDs  map[string][]string
}

func (c *consultantLoad) fullTime() bool {
	return strings.Contains(strings.ToLower(c.category), "full") || c.category == model.UndefinedCategory
}

func (c *consultantLoad) partTime() bool {
	return strings.Contains(strings.ToLower(c.category), "part")
}

// aggregate groups records by consultant in first-seen order. The category
// is the first consultant type that is neither blank nor Undefined.
func aggregate(records []model.Record) []*consultantLoad {
	byName := make(map[string]*consultantLoad)
	var order []*consultantLoad

	for _, r := range records {
		c, ok := byName[r.Consultant]
		if !ok {
			c = &consultantLoad{
				name:     r.Consultant,
				category: model.UndefinedCategory,
				dayLoad:  make(map[string]float64),
				dayIDs:   make(map[string][]string),
			}
			byName[r.Consultant] = c
			order = append(order, c)
		}
		if c.category == model.UndefinedCategory && r.ConsultantType != "" {
			c.category = r.ConsultantType
		}

		c.hours += r.Hours
		c.allIDs = append(c.allIDs, r.ID)

		if isWeekend(r.Date) {
			c.weekendHours += r.Hours
			c.weekendIDs = append(c.weekendIDs, r.ID)
		}

		if _, seen := c.dayLoad[r.Date]; !seen {
			c.days = append(c.days, r.Date)
		}
		c.dayLoad[r.Date] += r.Hours
		c.dayIDs[r.Date] = append(c.dayIDs[r.Date], r.ID)
	}
	return order
}

// isWeekend reports whether a YYYY-MM-DD date falls on Saturday or Sunday.
// Dates that do not split into three numbers are never weekends.
func isWeekend(date string) bool {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return false
		}
		n[i] = v
	}
	wd := time.Date(n[0], time.Month(n[1]), n[2], 0, 0, 0, 0, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// businessDaysThrough counts weekdays from the first of now's month up to
// and including now's day.
func businessDaysThrough(now time.Time) int {
	days := 0
	for d := 1; d <= now.Day(); d++ {
		wd := time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, now.Location()).Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// isCurrentMonth reports whether a YYYY-MM token names now's month.
func isCurrentMonth(month string, now time.Time) bool {
	parts := strings.Split(strings.TrimSpace(month), "-")
	if len(parts) < 2 {
		return false
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return y == now.Year() && time.Month(m) == now.Month()
}
