package spreadsheet

import (
	"fmt"
	"strings"
)

// Canonical template fields. Title/keywords/category/published_url
// drive the similarity engine; description is display-only. Any other
// mapped column rides along as an extra field for prompt rendering.
const (
	FieldTitle        = "title"
	FieldKeywords     = "keywords"
	FieldCategory     = "category"
	FieldPublishedURL = "published_url"
	FieldDescription  = "description"
)

// Mapping binds field names to zero-based column indexes.
type Mapping map[string]int

var canonicalSynonyms = []struct {
	field string
	names []string
}{
	{FieldTitle, []string{"title", "post title", "blog title", "blog post title", "headline", "topic"}},
	{FieldKeywords, []string{"keywords", "keyword", "seo keywords", "target keywords", "tags"}},
	{FieldCategory, []string{"category", "pillar", "content pillar", "content category", "theme"}},
	{FieldPublishedURL, []string{"published url", "url", "link", "live url", "published link", "post url"}},
	{FieldDescription, []string{"description", "content description", "notes", "summary", "brief"}},
}

// DetectMapping guesses a mapping from header names. Canonical fields
// claim the first matching unclaimed column in synonym-list order;
// every leftover column becomes an extra field under its sanitized
// header name.
func DetectMapping(headers []string) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	mapping := Mapping{}
	used := make([]bool, len(headers))
	for _, canon := range canonicalSynonyms {
		for _, name := range canon.names {
			found := -1
			for i, h := range normalized {
				if !used[i] && h == name {
					found = i
					break
				}
			}
			if found >= 0 {
				mapping[canon.field] = found
				used[found] = true
				break
			}
		}
	}
	for i, h := range headers {
		if used[i] {
			continue
		}
		name := extraFieldName(h)
		if name == "" {
			continue
		}
		if _, taken := mapping[name]; taken {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		mapping[name] = i
	}
	return mapping
}

// Validate checks the mapping against a sheet of columnCount columns.
// A title binding is required; everything else is optional.
func (m Mapping) Validate(columnCount int) error {
	if len(m) == 0 {
		return fmt.Errorf("mapping is empty")
	}
	for field, col := range m {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("mapping has an unnamed field for column %d", col)
		}
		if col < 0 || col >= columnCount {
			return fmt.Errorf("field %q maps to column %d, sheet has %d columns", field, col, columnCount)
		}
	}
	if _, ok := m[FieldTitle]; !ok {
		return fmt.Errorf("mapping does not bind the %q field", FieldTitle)
	}
	return nil
}

// MappedRow is one sheet row resolved through a mapping. Fields holds
// every bound field by name, canonical ones included.
type MappedRow struct {
	Position     int
	Title        string
	RawKeywords  string
	Category     string
	PublishedURL string
	Description  string
	Fields       map[string]string
}

func ApplyMapping(sheet *Sheet, m Mapping) []MappedRow {
	out := make([]MappedRow, 0, len(sheet.Rows))
	for pos, cells := range sheet.Rows {
		row := MappedRow{Position: pos, Fields: make(map[string]string, len(m))}
		for field, col := range m {
			val := ""
			if col >= 0 && col < len(cells) {
				val = cells[col]
			}
			row.Fields[field] = val
			switch field {
			case FieldTitle:
				row.Title = val
			case FieldKeywords:
				row.RawKeywords = val
			case FieldCategory:
				row.Category = val
			case FieldPublishedURL:
				row.PublishedURL = val
			case FieldDescription:
				row.Description = val
			}
		}
		out = append(out, row)
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	for _, sep := range []string{"_", "-", "/", "."} {
		h = strings.ReplaceAll(h, sep, " ")
	}
	return strings.Join(strings.Fields(h), " ")
}

// extraFieldName turns an arbitrary header into a snake_case field
// name: "Season (2025)" -> "season_2025".
func extraFieldName(header string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
