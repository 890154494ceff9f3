package ingest

import (
	"regexp"
	"strings"
)

// Field is a canonical column of a timesheet.
type Field int

const (
	FieldDate Field = iota
	FieldClient
	FieldDepartment
	FieldHours
	FieldRecordType
	FieldTicketID
	FieldInternalTicketID
	FieldProject
	FieldConsultant
	FieldDescription
	FieldConsultantType
	fieldCount
)

var fieldNames = [fieldCount]string{
	"date", "client", "department", "hours", "recordType", "ticketId",
	"internalTicketId", "project", "consultant", "description", "consultantType",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Absent marks a field without a usable column.
const Absent = -1

type fieldRule struct {
	keywords []string
	// exact requires the whole normalized header to equal a keyword.
	exact bool
	// reject skips headers containing any of these, even on a match.
	reject   []string
	fallback int
}

// Keywords are compared against normalized headers, so they carry no
// accents, spaces or punctuation.
var fieldRules = [fieldCount]fieldRule{
	FieldDate: {
		keywords: []string{"fecha", "date"},
		fallback: 0,
	},
	FieldClient: {
		keywords: []string{"cliente", "customer", "client"},
		exact:    true,
		fallback: 1,
	},
	FieldDepartment: {
		keywords: []string{"departamento", "sector", "area", "department"},
		reject:   []string{"tarea"},
		fallback: 2,
	},
	FieldHours: {
		keywords: []string{"cantidaddehoras", "horas", "hours", "tiempo"},
		fallback: 4,
	},
	FieldRecordType: {
		keywords: []string{"tipoderegistro", "tiporegistro", "recordtype", "tipo"},
		reject:   []string{"consultor", "consultant"},
		fallback: 5,
	},
	FieldTicketID: {
		keywords: []string{"idticketcliente", "ticketcliente", "ticket", "idticket", "ticketid", "clientticket"},
		exact:    true,
		fallback: 7,
	},
	FieldInternalTicketID: {
		keywords: []string{"idticketinterno", "ticketinterno", "internalticket", "idinterno"},
		fallback: 6,
	},
	FieldProject: {
		keywords: []string{"tarea", "actividad", "project", "task"},
		fallback: 8,
	},
	FieldConsultant: {
		keywords: []string{"consultor", "recurso", "nombre", "empleado", "consultant", "employee", "name"},
		exact:    true,
		fallback: 10,
	},
	FieldDescription: {
		keywords: []string{"observaciones", "observacion", "descripcion", "comentarios", "description", "comments", "notes"},
		fallback: 11,
	},
	FieldConsultantType: {
		keywords: []string{"tipodeconsultor", "tipoconsultor", "modalidad", "seniority", "modalidadcontratacion", "consultanttype"},
		fallback: Absent,
	},
}

var headerNoise = regexp.MustCompile(`[\s\-_./]`)

// NormalizeHeader lowercases, strips accents and removes whitespace and
// the characters - _ . / so header spellings compare equal.
func NormalizeHeader(h string) string {
	return headerNoise.ReplaceAllString(foldLower(strings.TrimSpace(h)), "")
}

// ColumnMap resolves canonical fields to column positions.
type ColumnMap struct {
	index [fieldCount]int
	width int
}

// ResolveColumns maps raw header cells to canonical fields. The first
// matching column wins. Unmatched fields take their positional fallback
// when it lies inside the header and no other field matched that column,
// otherwise they are Absent.
func ResolveColumns(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	cm := ColumnMap{width: len(headers)}
	claimed := make(map[int]bool, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		cm.index[f] = findColumn(normalized, fieldRules[f])
		if cm.index[f] != Absent {
			claimed[cm.index[f]] = true
		}
	}
	for f := Field(0); f < fieldCount; f++ {
		fb := fieldRules[f].fallback
		// a claimed fallback would map two fields to one column
		if cm.index[f] != Absent || fb == Absent || fb >= len(headers) || claimed[fb] {
			continue
		}
		cm.index[f] = fb
	}
	return cm
}

func findColumn(headers []string, rule fieldRule) int {
	for i, h := range headers {
		if h == "" || containsAny(h, rule.reject) {
			continue
		}
		for _, k := range rule.keywords {
			if (rule.exact && h == k) || (!rule.exact && strings.Contains(h, k)) {
				return i
			}
		}
	}
	return Absent
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Index returns the column of f or Absent.
func (c ColumnMap) Index(f Field) int {
	if f < 0 || f >= fieldCount {
		return Absent
	}
	return c.index[f]
}

// Width is the number of header columns.
func (c ColumnMap) Width() int { return c.width }
