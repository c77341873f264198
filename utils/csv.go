package utils

import (
	"bytes"
	"strings"
)

// Record is one exported row. Keys keeps column order, the way object keys keep
// insertion order in the export format.
type Record struct {
	Keys   []string
	Values map[string]string
}

func NewRecord() *Record {
	return &Record{Values: make(map[string]string)}
}

// Set appends key on first use and (re)assigns its value.
func (r *Record) Set(key, value string) *Record {
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
	return r
}

// EncodeCSV writes records as CSV with CRLF line endings. The header row is the
// key list of the first record; later records are projected onto it. Fields are
// quoted only when they hold a comma, a double quote or a line break, and their
// bytes are written unchanged.
func EncodeCSV(records []*Record) ([]byte, error) {
	var buf bytes.Buffer
	if len(records) == 0 {
		return buf.Bytes(), nil
	}
	header := records[0].Keys
	writeCSVRow(&buf, header)
	row := make([]string, len(header))
	for _, rec := range records {
		for i, k := range header {
			row[i] = rec.Values[k]
		}
		writeCSVRow(&buf, row)
	}
	return buf.Bytes(), nil
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !strings.ContainsAny(f, ",\"\r\n") {
			buf.WriteString(f)
			continue
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
