// Package stats computes the KPI block and chart series for a record set.
package stats

import (
	"sort"

	"github.com/okian/workforce/internal/domain/model"
)

// NoRecordType groups records without a record type in the monthly trend.
const NoRecordType = "No Type"

// NotAvailable stands in for names when the record set is empty.
const NotAvailable = "N/A"

// Share is a named hour total.
type Share struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// ConsultantLoad is a consultant's hours split by client.
type ConsultantLoad struct {
	Name     string             `json:"name"`
	Total    float64            `json:"total"`
	ByClient map[string]float64 `json:"byClient"`
}

// MonthTrend is one month's hours split by record type.
type MonthTrend struct {
	Month        string             `json:"month"`
	Hours        float64            `json:"hours"`
	ByRecordType map[string]float64 `json:"byRecordType"`
}

// KPI is the headline block.
type KPI struct {
	TotalHours            float64 `json:"totalHours"`
	TotalConsultants      int     `json:"totalConsultants"`
	TotalClients          int     `json:"totalClients"`
	TopClient             string  `json:"topClient"`
	TopClientHours        float64 `json:"topClientHours"`
	TopConsultantName     string  `json:"topConsultantName"`
	TopConsultantHours    float64 `json:"topConsultantHours"`
	BottomConsultantName  string  `json:"bottomConsultantName"`
	BottomConsultantHours float64 `json:"bottomConsultantHours"`
}

// Summary holds the KPIs and chart series.
type Summary struct {
	KPI KPI `json:"kpi"`
	// ByClient is sorted by hours, descending.
	ByClient []Share `json:"byClient"`
	// ByConsultant is sorted by total, descending.
	ByConsultant []ConsultantLoad `json:"byConsultant"`
	// Clients lists the clients present, sorted by name.
	Clients []string `json:"clients"`
	// MonthlyTrend is sorted by month, ascending.
	MonthlyTrend []MonthTrend `json:"monthlyTrend"`
}

// Compute aggregates records. Ties keep first-seen order.
func Compute(records []model.Record) Summary {
	var (
		total     float64
		clientIdx = map[string]int{}
		clients   []Share
		loadIdx   = map[string]int{}
		loads     []ConsultantLoad
		monthIdx  = map[string]int{}
		trend     []MonthTrend
	)

	for _, r := range records {
		total += r.Hours

		i, ok := clientIdx[r.Client]
		if !ok {
			i = len(clients)
			clientIdx[r.Client] = i
			clients = append(clients, Share{Name: r.Client})
		}
		clients[i].Hours += r.Hours

		j, ok := loadIdx[r.Consultant]
		if !ok {
			j = len(loads)
			loadIdx[r.Consultant] = j
			loads = append(loads, ConsultantLoad{Name: r.Consultant, ByClient: map[string]float64{}})
		}
		loads[j].Total += r.Hours
		loads[j].ByClient[r.Client] += r.Hours

		m, ok := monthIdx[r.Month()]
		if !ok {
			m = len(trend)
			monthIdx[r.Month()] = m
			trend = append(trend, MonthTrend{Month: r.Month(), ByRecordType: map[string]float64{}})
		}
		rt := r.RecordType
		if rt == "" {
			rt = NoRecordType
		}
		trend[m].Hours += r.Hours
		trend[m].ByRecordType[rt] += r.Hours
	}

	sort.SliceStable(clients, func(a, b int) bool { return clients[a].Hours > clients[b].Hours })
	sort.SliceStable(loads, func(a, b int) bool { return loads[a].Total > loads[b].Total })
	sort.SliceStable(trend, func(a, b int) bool { return trend[a].Month < trend[b].Month })

	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.Name)
	}
	sort.Strings(names)

	kpi := KPI{
		TotalHours:           total,
		TotalConsultants:     len(loads),
		TotalClients:         len(clients),
		TopClient:            NotAvailable,
		TopConsultantName:    NotAvailable,
		BottomConsultantName: NotAvailable,
	}
	if len(clients) > 0 {
		kpi.TopClient, kpi.TopClientHours = clients[0].Name, clients[0].Hours
	}
	if len(loads) > 0 {
		top, bottom := loads[0], loads[len(loads)-1]
		kpi.TopConsultantName, kpi.TopConsultantHours = top.Name, top.Total
		kpi.BottomConsultantName, kpi.BottomConsultantHours = bottom.Name, bottom.Total
	}

	return Summary{
		KPI:          kpi,
		ByClient:     clients,
		ByConsultant: loads,
		Clients:      names,
		MonthlyTrend: trend,
	}
}
