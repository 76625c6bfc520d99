package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pocketbook/internal/core"
)

const (
	maxFormBytes   = 64 << 10
	maxUploadBytes = 10 << 20
)

// MonthParams is a validated year and month.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from query, defaulting each to the
// month containing now. Out of range values are an error.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return params, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return params, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	return params, nil
}

// HasMonth reports whether query selects a specific month.
func HasMonth(query url.Values) bool {
	return strings.TrimSpace(query.Get("year")) != "" || strings.TrimSpace(query.Get("month")) != ""
}

// ParseKindParam reads the "type" query value. Empty yields fallback.
func ParseKindParam(query url.Values, fallback core.Kind) (core.Kind, error) {
	v := strings.TrimSpace(query.Get("type"))
	if v == "" {
		return fallback, nil
	}
	return core.ParseKind(v)
}

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as trimmed strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		p.err = dec.Decode(&p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns the field as a sanitized string; absent fields yield "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(v))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
