// Package prompting renders stored template bodies against calendar
// row field values. Placeholders use {{field}} syntax; names are
// case-insensitive and resolve against snake_case field names.
package prompting

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// RenderResult reports what happened to each placeholder. Missing
// placeholders stay verbatim in Text so the user can see what was not
// filled.
type RenderResult struct {
	Text    string   `json:"text"`
	Fields  []string `json:"fields"`
	Missing []string `json:"missing"`
}

// Render substitutes values into body. A field present in values
// substitutes even when empty; a field absent from values is left in
// place and reported in Missing.
func Render(body string, values map[string]string) RenderResult {
	res := RenderResult{Fields: ExtractFields(body), Missing: []string{}}
	seenMissing := map[string]bool{}
	res.Text = placeholderRe.ReplaceAllStringFunc(body, func(m string) string {
		name := strings.ToLower(placeholderRe.FindStringSubmatch(m)[1])
		if val, ok := values[name]; ok {
			return val
		}
		if !seenMissing[name] {
			seenMissing[name] = true
			res.Missing = append(res.Missing, name)
		}
		return m
	})
	return res
}

// ExtractFields lists the placeholder names in body, lowercased,
// deduplicated, in first-appearance order.
func ExtractFields(body string) []string {
	fields := []string{}
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return fields
}
