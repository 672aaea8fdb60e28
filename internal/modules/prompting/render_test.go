package prompting

import (
	"reflect"
	"testing"
)

func TestRenderSubstitutesFields(t *testing.T) {
	body := "Write a post titled \"{{title}}\" targeting {{keywords}} for the {{category}} pillar."
	res := Render(body, map[string]string{
		"title":    "Hudson Valley Wine Tasting Guide",
		"keywords": "wine tasting, vineyard tours",
		"category": "Wine Education",
	})
	want := "Write a post titled \"Hudson Valley Wine Tasting Guide\" targeting wine tasting, vineyard tours for the Wine Education pillar."
	if res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
	if len(res.Missing) != 0 {
		t.Fatalf("Missing = %v, want none", res.Missing)
	}
}

func TestRenderLeavesMissingPlaceholders(t *testing.T) {
	res := Render("{{title}} / {{word_count}} words / {{word_count}}", map[string]string{"title": "Guide"})
	if res.Text != "Guide / {{word_count}} words / {{word_count}}" {
		t.Fatalf("Text = %q", res.Text)
	}
	if !reflect.DeepEqual(res.Missing, []string{"word_count"}) {
		t.Fatalf("Missing = %v, want [word_count]", res.Missing)
	}
}

func TestRenderCaseInsensitiveAndEmptyValues(t *testing.T) {
	res := Render("{{ Title }}: {{DESCRIPTION}}", map[string]string{"title": "A", "description": ""})
	if res.Text != "A: " {
		t.Fatalf("Text = %q, want %q", res.Text, "A: ")
	}
	if len(res.Missing) != 0 {
		t.Fatalf("Missing = %v, present-but-empty fields are not missing", res.Missing)
	}
}

func TestExtractFields(t *testing.T) {
	got := ExtractFields("{{title}} {{keywords}} {{title}} {{ Season_2025 }} plain text")
	want := []string{"title", "keywords", "season_2025"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractFields = %v, want %v", got, want)
	}
	if got := ExtractFields("no placeholders"); len(got) != 0 {
		t.Fatalf("ExtractFields = %v, want empty", got)
	}
}
