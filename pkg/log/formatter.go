package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TextFormatter renders entries as a single human readable line:
//
//	2026-01-02T15:04:05.000Z INFO  processed component=injector rows=42
type TextFormatter struct {
	// TimeFormat defaults to RFC3339 with milliseconds.
	TimeFormat string
	// Caller appends the file:line of the log call.
	Caller bool
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	tf := f.TimeFormat
	if tf == "" {
		tf = defaultTimeFormat
	}
	var b bytes.Buffer
	b.WriteString(entry.Timestamp.Format(tf))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", entry.Level.String())
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		writeTextValue(&b, entry.Fields[k])
	}
	if f.Caller && entry.Caller != "" {
		b.WriteString(" caller=")
		b.WriteString(entry.Caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeTextValue(b *bytes.Buffer, v interface{}) {
	var s string
	switch tv := v.(type) {
	case error:
		s = tv.Error()
	case time.Duration:
		s = tv.String()
	case fmt.Stringer:
		s = tv.String()
	case string:
		s = tv
	default:
		s = fmt.Sprint(tv)
	}
	if needsQuote(s) {
		fmt.Fprintf(b, "%q", s)
		return
	}
	b.WriteString(s)
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r < 0x20 {
			return true
		}
	}
	return false
}

// JSONFormatter renders entries as one JSON object per line.
type JSONFormatter struct {
	Caller bool
}

func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	out := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		switch tv := v.(type) {
		case error:
			out[k] = tv.Error()
		case time.Duration:
			out[k] = tv.String()
		default:
			out[k] = v
		}
	}
	out["time"] = entry.Timestamp.UTC().Format(defaultTimeFormat)
	out["level"] = entry.Level.String()
	out["msg"] = entry.Message
	if f.Caller && entry.Caller != "" {
		out["caller"] = entry.Caller
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
