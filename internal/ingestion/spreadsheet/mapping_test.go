package spreadsheet

import (
	"reflect"
	"testing"
)

func TestDetectMapping(t *testing.T) {
	headers := []string{"Blog Title", "SEO Keywords", "Content Pillar", "Published URL", "Notes", "Season (2025)"}
	got := DetectMapping(headers)
	want := Mapping{
		FieldTitle:        0,
		FieldKeywords:     1,
		FieldCategory:     2,
		FieldPublishedURL: 3,
		FieldDescription:  4,
		"season_2025":     5,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectMapping = %v, want %v", got, want)
	}
}

func TestDetectMappingSynonymPriority(t *testing.T) {
	// an exact "title" header wins over "blog title" regardless of
	// column position
	got := DetectMapping([]string{"Blog Title", "Title"})
	if got[FieldTitle] != 1 {
		t.Fatalf("title mapped to column %d, want 1", got[FieldTitle])
	}
	if _, ok := got["blog_title"]; !ok {
		t.Fatalf("unclaimed header missing as extra field: %v", got)
	}
}

func TestMappingValidate(t *testing.T) {
	m := Mapping{FieldTitle: 0, FieldKeywords: 1}
	if err := m.Validate(2); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (Mapping{FieldKeywords: 0}).Validate(2); err == nil {
		t.Fatalf("expected error for missing title binding")
	}
	if err := (Mapping{FieldTitle: 5}).Validate(2); err == nil {
		t.Fatalf("expected error for out-of-range column")
	}
	if err := (Mapping{}).Validate(2); err == nil {
		t.Fatalf("expected error for empty mapping")
	}
}

func TestApplyMapping(t *testing.T) {
	sheet := &Sheet{
		Headers: []string{"Title", "Keywords", "Pillar", "URL", "Season"},
		Rows: [][]string{
			{"Wine Guide", "wine, tasting", "Education", "https://example.com/p1", "Fall"},
			{"Harvest Recap", "harvest", "Seasonal", "", "Autumn"},
		},
	}
	m := Mapping{
		FieldTitle:        0,
		FieldKeywords:     1,
		FieldCategory:     2,
		FieldPublishedURL: 3,
		"season":          4,
	}
	rows := ApplyMapping(sheet, m)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	first := rows[0]
	if first.Position != 0 || first.Title != "Wine Guide" || first.RawKeywords != "wine, tasting" {
		t.Fatalf("first row = %+v", first)
	}
	if first.Category != "Education" || first.PublishedURL != "https://example.com/p1" {
		t.Fatalf("first row = %+v", first)
	}
	if first.Fields["season"] != "Fall" || first.Fields[FieldTitle] != "Wine Guide" {
		t.Fatalf("first row fields = %v", first.Fields)
	}
	if rows[1].PublishedURL != "" || rows[1].Fields["season"] != "Autumn" {
		t.Fatalf("second row = %+v", rows[1])
	}
}

func TestExtraFieldName(t *testing.T) {
	cases := map[string]string{
		"Season (2025)":  "season_2025",
		"  Word Count  ": "word_count",
		"%%%":            "",
		"CTA":            "cta",
	}
	for in, want := range cases {
		if got := extraFieldName(in); got != want {
			t.Fatalf("extraFieldName(%q) = %q, want %q", in, got, want)
		}
	}
}
