package assembly

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podpress/internal/studio"
)

var outputNameCaser = cases.Title(language.Und)

// Metadata is the raw episode metadata as entered. Tags may arrive either as
// free text or as an already-structured list.
type Metadata struct {
	Title       string
	Description string
	Season      string
	Episode     string
	TagsText    string
	Tags        []string
	CoverArtURL string
}

// TagsFromText splits free-text tag input on commas and newlines, trims each
// entry, and drops blanks. Blank input yields an empty list.
func TagsFromText(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// sanitize produces the wire-ready episode details. A structured tag list
// passes through unchanged; free text is split and trimmed.
func sanitize(m Metadata) studio.EpisodeDetails {
	tags := m.Tags
	if tags == nil {
		tags = TagsFromText(m.TagsText)
	}
	return studio.EpisodeDetails{
		Title:       strings.TrimSpace(m.Title),
		Description: strings.TrimSpace(m.Description),
		Season:      strings.TrimSpace(m.Season),
		Episode:     strings.TrimSpace(m.Episode),
		Tags:        tags,
		CoverArtURL: m.CoverArtURL,
	}
}

// defaultOutputName derives a presentable output name from the title.
func defaultOutputName(title string) string {
	return outputNameCaser.String(strings.TrimSpace(title))
}
