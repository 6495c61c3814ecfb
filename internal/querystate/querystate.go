// Package querystate keeps facet selections and the page index in a
// shareable query string.
//
// Each facet is one parameter whose value is the comma-joined list of
// selected values, e.g. "employmentType=fulltime,contract&tag=go&page=2".
// A facet with nothing selected has no parameter, and page 1 is implicit.
package querystate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/khrees2412/jobdeck/pkg/models"
)

// PageParam is the reserved pagination parameter.
const PageParam = "page"

// State is the decoded form of a query string.
type State struct {
	Selection models.FacetSelection
	Page      int
}

// Decode parses raw (with or without a leading '?'). Unknown facet keys are
// kept in the selection. A malformed page resolves to 1 and a query that
// cannot be parsed at all resolves to the empty selection on page 1.
func Decode(raw string) State {
	st, _ := decode(raw)
	return st
}

func decode(raw string) (State, bool) {
	st := State{Selection: models.FacetSelection{}, Page: 1}
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return st, false
	}
	for key, list := range values {
		if key == "" {
			continue
		}
		if key == PageParam {
			st.Page = parsePage(list)
			continue
		}
		for _, joined := range list {
			for _, v := range strings.Split(joined, ",") {
				st.Selection.Add(key, v)
			}
		}
	}
	return st, true
}

func parsePage(list []string) int {
	if len(list) == 0 {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(list[0]))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Encode renders sel and page in canonical form: keys sorted, empty facets
// omitted, page omitted when it is 1 or less. Values must not contain commas.
func Encode(sel models.FacetSelection, page int) string {
	v := url.Values{}
	for _, key := range sel.Keys() {
		if key == "" || key == PageParam {
			continue
		}
		if joined := joinValues(sel[key]); joined != "" {
			v.Set(key, joined)
		}
	}
	if page > 1 {
		v.Set(PageParam, strconv.Itoa(page))
	}
	return strings.ReplaceAll(v.Encode(), "%2C", ",")
}

func joinValues(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ",")
}

// SetParam returns raw with parameter key set to value, or removed when value
// is empty. Every other parameter is kept byte for byte in its original
// position; a new parameter is appended.
func SetParam(raw, key, value string) string {
	raw = strings.TrimPrefix(raw, "?")
	replacement := ""
	if value != "" {
		replacement = url.QueryEscape(key) + "=" + escapeList(value)
	}

	var out []string
	replaced := false
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		if paramName(segment) != key {
			out = append(out, segment)
			continue
		}
		if !replaced && replacement != "" {
			out = append(out, replacement)
		}
		replaced = true
	}
	if !replaced && replacement != "" {
		out = append(out, replacement)
	}
	return strings.Join(out, "&")
}

func paramName(segment string) string {
	name, _, _ := strings.Cut(segment, "=")
	if unescaped, err := url.QueryUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func escapeList(joined string) string {
	parts := strings.Split(joined, ",")
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, ",")
}
