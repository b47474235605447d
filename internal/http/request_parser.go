// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// batch forms (form-encoded or JSON) and dashboard query criteria.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"batchdesk/internal/core"
	"batchdesk/internal/query"
)

// Form and JSON field names shared by the add and edit forms.
const (
	fieldName     = "name"
	fieldCategory = "category"
	fieldPrice    = "price"
	fieldDate     = "date"
	fieldClass    = "class"
)

const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		return p.formData.Has(key)
	}
	return false
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseNewBatch reads the add form. Price and date are parsed here; the
// remaining rules are checked by the repository.
func ParseNewBatch(p *RequestBodyParser) (core.NewBatchInput, error) {
	in := core.NewBatchInput{
		Name:       p.Get(fieldName),
		Category:   p.Get(fieldCategory),
		ClassGrade: p.Get(fieldClass),
	}
	price, err := core.ParseMoney(p.Get(fieldPrice))
	if err != nil {
		return in, core.ErrInvalidAmount
	}
	in.Price = price
	date, err := core.ParseDate(p.Get(fieldDate))
	if err != nil {
		return in, core.ErrInvalidDate
	}
	in.Date = date
	return in, nil
}

// ParseBatchPatch reads the edit form. Only fields present in the request are
// patched; category is ignored because it never changes.
func ParseBatchPatch(p *RequestBodyParser) (core.BatchPatch, error) {
	var patch core.BatchPatch
	if p.Has(fieldName) {
		name := p.Get(fieldName)
		patch.Name = &name
	}
	if p.Has(fieldPrice) {
		price, err := core.ParseMoney(p.Get(fieldPrice))
		if err != nil {
			return patch, core.ErrInvalidAmount
		}
		patch.Price = &price
	}
	if p.Has(fieldDate) {
		date, err := core.ParseDate(p.Get(fieldDate))
		if err != nil {
			return patch, core.ErrInvalidDate
		}
		patch.Date = &date
	}
	if p.Has(fieldClass) {
		class := p.Get(fieldClass)
		patch.ClassGrade = &class
	}
	return patch, nil
}

// ParseCriteria reads the dashboard search box and selectors from a query string.
func ParseCriteria(q url.Values) query.Criteria {
	return query.Criteria{
		Search:   sanitizeInput(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Class:    strings.TrimSpace(q.Get("class")),
	}
}

// CriteriaQuery encodes c back into a query string, leaving out sentinel selectors.
func CriteriaQuery(c query.Criteria) string {
	v := url.Values{}
	if c.Search != "" {
		v.Set("q", c.Search)
	}
	if c.Category != "" && c.Category != query.AllCategories {
		v.Set("category", c.Category)
	}
	if c.Class != "" && c.Class != query.AllClasses {
		v.Set("class", c.Class)
	}
	return v.Encode()
}
