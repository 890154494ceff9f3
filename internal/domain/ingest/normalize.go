package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/okian/workforce/internal/domain/model"
)

const (
	fuzzyKeyLength = 50
	yearThreshold  = 1000
	minRowTokens   = 2
)

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	vowels       = regexp.MustCompile(`[aeiou]`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]`)
)

// RepairColumns merges adjacent pure-digit tokens into "int.frac" while
// the row is wider than the header. This undoes comma decimals that were
// split by a comma separator. It returns the repaired tokens and the
// number of merges.
func RepairColumns(tokens []string, width int) ([]string, int) {
	if len(tokens) <= width {
		return tokens, 0
	}
	cols := append([]string(nil), tokens...)
	merges := 0
	for k := 0; k < len(cols)-1; k++ {
		a := strings.TrimSpace(cols[k])
		b := strings.TrimSpace(cols[k+1])
		if !digitsOnly.MatchString(a) || !digitsOnly.MatchString(b) {
			continue
		}
		merged := a + "." + b
		cols = append(cols[:k], append([]string{merged}, cols[k+2:]...)...)
		merges++
		if len(cols) == width {
			break
		}
		// the merged token may pair with the next one
		k--
	}
	return cols, merges
}

// ExtractValue returns the trimmed token at index with one wrapping
// double quote removed from each end. Absent or out of range gives "".
func ExtractValue(tokens []string, index int) string {
	if index < 0 || index >= len(tokens) {
		return ""
	}
	v := strings.TrimSpace(tokens[index])
	v = strings.TrimPrefix(v, `"`)
	return strings.TrimSuffix(v, `"`)
}

// NormalizeDate reshapes d/m/y and y-m-d style dates into YYYY-MM-DD. A
// time of day after a space or 'T' is dropped. The year is whichever
// outer part exceeds 1000. Anything else is returned trimmed.
func NormalizeDate(s string) string {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return ""
	}
	if i := strings.IndexByte(clean, ' '); i >= 0 {
		clean = clean[:i]
	}
	if i := strings.IndexByte(clean, 'T'); i >= 0 {
		clean = clean[:i]
	}

	sep := ""
	switch {
	case strings.Contains(clean, "/"):
		sep = "/"
	case strings.Contains(clean, "-"):
		sep = "-"
	default:
		return clean
	}

	parts := strings.Split(clean, sep)
	if len(parts) != 3 {
		return clean
	}
	var n [3]int
	for i, p := range parts {
		v, ok := parseIntPrefix(p)
		if !ok {
			return clean
		}
		n[i] = v
	}
	switch {
	case n[0] > yearThreshold:
		return fmt.Sprintf("%d-%02d-%02d", n[0], n[1], n[2])
	case n[2] > yearThreshold:
		return fmt.Sprintf("%d-%02d-%02d", n[2], n[1], n[0])
	}
	return clean
}

// parseIntPrefix reads the leading integer of s, ignoring any trailing text.
func parseIntPrefix(s string) (int, bool) {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseHours reads a decimal that may use a comma as decimal point. Only
// the numeric prefix is read. Unparsable, negative or non-finite values
// give 0.
func ParseHours(s string) float64 {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// InferConsultantType guesses the contract type from the raw row text.
func InferConsultantType(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "full time"), strings.Contains(lower, "fulltime"):
		return "Full Time"
	case strings.Contains(lower, "part time"), strings.Contains(lower, "parttime"):
		return "Part Time"
	}
	return model.UndefinedCategory
}

// FuzzyKey reduces s to lowercase consonants and digits, at most 50 long,
// so spelling variants of the same name collide.
func FuzzyKey(s string) string {
	if s == "" {
		return ""
	}
	k := nonAlnum.ReplaceAllString(vowels.ReplaceAllString(foldLower(s), ""), "")
	if len(k) > fuzzyKeyLength {
		k = k[:fuzzyKeyLength]
	}
	return k
}

// Fingerprint identifies a record for duplicate detection within a batch.
// hours is the raw hours token, so rows whose hours failed to parse do not
// collide with rows that really log zero.
func Fingerprint(rec model.Record, hours string) string {
	fp := strings.Join([]string{
		rec.Date,
		hoursKey(hours),
		FuzzyKey(rec.Consultant),
		FuzzyKey(rec.Client),
		FuzzyKey(rec.RecordType),
		FuzzyKey(rec.TicketID),
		FuzzyKey(rec.InternalTicketID),
	}, "|")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, fp)
}

// hoursKey renders a fully numeric token canonically and keeps anything
// else verbatim.
func hoursKey(token string) string {
	token = strings.Replace(strings.TrimSpace(token), ",", ".", 1)
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return token
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IDFunc builds a record id from its source line number.
type IDFunc func(line int) string

func randomID(line int) string {
	return fmt.Sprintf("%d-%s", line, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// Normalizer turns data lines into records using one resolved header.
type Normalizer struct {
	sep  rune
	cols ColumnMap
	ids  IDFunc
}

// NewNormalizer detects the separator of header and resolves its columns.
func NewNormalizer(header string, opts ...Option) *Normalizer {
	o := applyOptions(opts)
	sep := DetectDataSeparator(header)
	return &Normalizer{
		sep:  sep,
		cols: ResolveColumns(SplitLine(header, sep)),
		ids:  o.ids,
	}
}

// Separator returns the detected field separator.
func (n *Normalizer) Separator() rune { return n.sep }

// Columns returns the resolved column map.
func (n *Normalizer) Columns() ColumnMap { return n.cols }

// Row normalizes one data line. merges counts repaired split decimals.
// ok is false when the line has fewer than two tokens.
func (n *Normalizer) Row(line int, raw string) (rec model.Record, merges int, ok bool) {
	rec, _, merges, ok = n.row(line, raw)
	return rec, merges, ok
}

// row is Row that also returns the raw hours token.
func (n *Normalizer) row(line int, raw string) (rec model.Record, hours string, merges int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Record{}, "", 0, false
	}
	tokens, merges := RepairColumns(SplitLine(raw, n.sep), n.cols.Width())
	if len(tokens) < minRowTokens {
		return model.Record{}, "", merges, false
	}

	get := func(f Field) string { return ExtractValue(tokens, n.cols.Index(f)) }

	hours = get(FieldHours)
	consultantType := get(FieldConsultantType)
	if consultantType == "" {
		consultantType = InferConsultantType(raw)
	}

	rec = model.Record{
		ID:               n.ids(line),
		Date:             NormalizeDate(get(FieldDate)),
		Client:           orDefault(get(FieldClient), model.UnknownName),
		Department:       get(FieldDepartment),
		Project:          orDefault(get(FieldProject), model.NoTask),
		Hours:            ParseHours(hours),
		RecordType:       get(FieldRecordType),
		TicketID:         get(FieldTicketID),
		InternalTicketID: get(FieldInternalTicketID),
		Consultant:       orDefault(get(FieldConsultant), model.UnknownName),
		Description:      get(FieldDescription),
		ConsultantType:   consultantType,
	}
	return rec, hours, merges, true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
