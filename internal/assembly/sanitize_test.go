package assembly

import (
	"reflect"
	"testing"
)

func TestTagsFromText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma and newline separated", "a, b\nc", []string{"a", "b", "c"}},
		{"extra whitespace", "  alpha ,beta\n  gamma  ", []string{"alpha", "beta", "gamma"}},
		{"blank input", "   ", []string{}},
		{"empty input", "", []string{}},
		{"blank entries dropped", "a,,\n ,b", []string{"a", "b"}},
		{"windows newlines", "a\r\nb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagsFromText(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("TagsFromText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePassesStructuredTagsThrough(t *testing.T) {
	details := sanitize(Metadata{
		Title: "Episode One",
		Tags:  []string{" raw ", "kept as-is"},
	})
	if !reflect.DeepEqual(details.Tags, []string{" raw ", "kept as-is"}) {
		t.Fatalf("structured tags must pass through unchanged, got %v", details.Tags)
	}
}

func TestSanitizeSplitsFreeTextTags(t *testing.T) {
	details := sanitize(Metadata{
		Title:    "  Episode One  ",
		TagsText: "news, tech\nweekly",
	})
	if details.Title != "Episode One" {
		t.Fatalf("title not trimmed: %q", details.Title)
	}
	if !reflect.DeepEqual(details.Tags, []string{"news", "tech", "weekly"}) {
		t.Fatalf("unexpected tags: %v", details.Tags)
	}
}

func TestDefaultOutputName(t *testing.T) {
	if got := defaultOutputName("  my first episode "); got != "My First Episode" {
		t.Fatalf("unexpected output name: %q", got)
	}
}
