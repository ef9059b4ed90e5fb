package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryRequest is either a Literal SQL statement or a NaturalLanguage question.
// The set of variants is closed.
type QueryRequest interface {
	isQueryRequest()
}

// Literal is SQL sent verbatim to the backend.
type Literal struct {
	SQL string
}

// NaturalLanguage is a question translated to SQL by the backend.
type NaturalLanguage struct {
	Question string
}

func (Literal) isQueryRequest()         {}
func (NaturalLanguage) isQueryRequest() {}

// SQLQueryBody is the request body of POST /query/sql.
type SQLQueryBody struct {
	ConnectionID ConnectionID `json:"connection_id"`
	SQL          string       `json:"sql"`
}

// NLQueryBody is the request body of POST /query/natural-language.
type NLQueryBody struct {
	ConnectionID ConnectionID `json:"connection_id"`
	Question     string       `json:"question"`
}

// ExportBody is the request body of POST /query/export.
type ExportBody struct {
	ConnectionID ConnectionID `json:"connection_id"`
	SQL          string       `json:"sql"`
	Format       ExportFormat `json:"format"`
}

// QueryResult is the uniform result of both dispatch paths.
type QueryResult struct {
	Data []Row `json:"data"`
	// SQL is the statement the backend executed; for natural-language
	// queries it is the generated statement.
	SQL   string `json:"sql,omitempty"`
	Error string `json:"error,omitempty"`
	// SuggestedExportFormat is set by the backend when the question implied one.
	SuggestedExportFormat ExportFormat `json:"suggested_export_format,omitempty"`
}

// Columns returns the column names of the first row in server order.
func (r *QueryResult) Columns() []string {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return r.Data[0].Columns()
}

// RowCount returns the number of rows.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

// Row is one result row that remembers the column order the server sent.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a row from alternating column/value pairs.
func NewRow(pairs ...any) Row {
	r := Row{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		k := fmt.Sprint(pairs[i])
		if _, dup := r.values[k]; !dup {
			r.keys = append(r.keys, k)
		}
		r.values[k] = pairs[i+1]
	}
	return r
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value of a column.
func (r Row) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Strings renders the values of cols as text; missing values and nulls become "NULL".
func (r Row) Strings(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		v, ok := r.values[c]
		if !ok || v == nil {
			out[i] = "NULL"
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// UnmarshalJSON decodes a JSON object while keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}

	r.keys = r.keys[:0]
	r.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row: expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("row: column %q: %w", key, err)
		}
		if _, dup := r.values[key]; !dup {
			r.keys = append(r.keys, key)
		}
		r.values[key] = v
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat lowercases and trims a user-supplied format selector.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return "", fmt.Errorf("export format is required")
	}
	return f, nil
}

// Extension returns the file extension for the format.
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// ExportPayload is the raw export body with the metadata the response carried.
type ExportPayload struct {
	Format      ExportFormat
	ContentType string
	// Filename comes from Content-Disposition when present, else export.<format>.
	Filename string
	Bytes    []byte
}
