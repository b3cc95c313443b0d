package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Document is the typed builder behind every rendered page. A document
// cannot be constructed without a title and canonical URL, which is how
// the always-present-canonical invariant is held at the type level
// instead of by template convention.
type Document struct {
	title       string
	description string
	canonical   string
	noindex     bool
	assets      Manifest
	schemas     []any
	sections    []string
}

// NewDocument starts a document. canonical must be the absolute
// canonical URL for the page.
func NewDocument(title, description, canonical string, assets Manifest) *Document {
	return &Document{
		title:       title,
		description: description,
		canonical:   canonical,
		assets:      assets,
	}
}

// Noindex marks the page as excluded from search indexes (and therefore
// from the sitemap).
func (d *Document) Noindex() *Document {
	d.noindex = true
	return d
}

// AddSchema embeds a JSON-LD structured data object in the head.
func (d *Document) AddSchema(schema any) *Document {
	d.schemas = append(d.schemas, schema)
	return d
}

// AddSection appends a pre-built HTML body section. Callers build
// sections with the esc/attr helpers so text content is always escaped.
func (d *Document) AddSection(section string) *Document {
	if section != "" {
		d.sections = append(d.sections, section)
	}
	return d
}

// HTML assembles the complete document.
func (d *Document) HTML() (string, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", esc(d.title))
	if d.description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", esc(d.description))
	}
	if d.noindex {
		b.WriteString("<meta name=\"robots\" content=\"noindex, nofollow\">\n")
	}
	fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", esc(d.canonical))
	for _, style := range d.assets.Styles {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", esc(style))
	}
	for _, schema := range d.schemas {
		encoded, err := json.Marshal(schema)
		if err != nil {
			return "", fmt.Errorf("marshal structured data: %w", err)
		}
		fmt.Fprintf(&b, "<script type=\"application/ld+json\">%s</script>\n", string(encoded))
	}
	b.WriteString("</head>\n<body>\n")
	for _, section := range d.sections {
		b.WriteString(section)
		b.WriteString("\n")
	}
	for _, script := range d.assets.Scripts {
		fmt.Fprintf(&b, "<script src=\"%s\" defer></script>\n", esc(script))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// esc HTML-escapes text content and attribute values.
func esc(s string) string {
	return html.EscapeString(s)
}
