package ingest

import (
	"strings"
)

var (
	teamNameKeywords = []string{"consultor", "nombre", "recurso", "empleado", "persona", "usuario", "collaborador", "colaborador", "name"}
	teamNameReject   = []string{"tipo", "type"}
	teamTypeKeywords = []string{"tipodeconsultor", "tipoconsultor", "modalidad", "clasificacion", "rol", "perfil", "seniority", "categoria", "category", "status", "type", "tipo"}
)

const (
	teamNameFallback = 0
	teamTypeFallback = 1
)

// ParseTeamConfig reads a name to category sheet. Columns are found by
// substring keywords, defaulting to the first two. Rows missing either
// value are skipped and a repeated name keeps its last category.
func ParseTeamConfig(text string) map[string]string {
	out := map[string]string{}
	rows := SplitRows(text)
	if len(rows) == 0 {
		return out
	}

	sep := DetectConfigSeparator(rows)
	headers := SplitLine(rows[0], sep)
	for i, h := range headers {
		headers[i] = NormalizeHeader(h)
	}

	nameIdx := findColumn(headers, fieldRule{keywords: teamNameKeywords, reject: teamNameReject})
	if nameIdx == Absent {
		nameIdx = teamNameFallback
	}
	typeIdx := findColumn(headers, fieldRule{keywords: teamTypeKeywords})
	if typeIdx == Absent {
		typeIdx = teamTypeFallback
	}

	for _, row := range rows[1:] {
		cols := SplitLine(row, sep)
		if len(cols) <= max(nameIdx, typeIdx) {
			continue
		}
		name := unwrapCell(cols[nameIdx])
		category := unwrapCell(cols[typeIdx])
		if name == "" || category == "" {
			continue
		}
		out[name] = category
	}
	return out
}

// unwrapCell trims a cell and removes one layer of double then single
// quote wrappers.
func unwrapCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
	s = strings.TrimSuffix(strings.TrimPrefix(s, `'`), `'`)
	return strings.TrimSpace(s)
}
