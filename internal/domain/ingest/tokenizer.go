package ingest

import "strings"

const (
	quote          = '"'
	SeparatorComma = ','
	SeparatorSemi  = ';'
	byteOrderMark  = "\uFEFF"
	configSample   = 3
)

// SplitLine splits one line into fields. A doubled quote inside a quoted
// field is a literal quote and the separator is inert while quoted. An
// unterminated quote consumes the rest of the line.
func SplitLine(line string, sep rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == quote:
			if inQuotes && i+1 < len(runes) && runes[i+1] == quote {
				current.WriteRune(quote)
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, current.String())
}

// DetectDataSeparator picks the separator of a timesheet header line.
// Ties favor ';'.
func DetectDataSeparator(header string) rune {
	semi := len(SplitLine(header, SeparatorSemi))
	comma := len(SplitLine(header, SeparatorComma))
	if semi >= comma {
		return SeparatorSemi
	}
	return SeparatorComma
}

// DetectConfigSeparator picks the separator of a team sheet from its first
// rows. ';' wins only when strictly more frequent than ','.
func DetectConfigSeparator(rows []string) rune {
	if len(rows) > configSample {
		rows = rows[:configSample]
	}
	sample := strings.Join(rows, "\n")
	if strings.Count(sample, string(SeparatorSemi)) > strings.Count(sample, string(SeparatorComma)) {
		return SeparatorSemi
	}
	return SeparatorComma
}

// SplitRows breaks text into lines on any newline convention and drops
// blank lines. A leading byte order mark is removed.
func SplitRows(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
