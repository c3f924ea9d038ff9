package gdocs

import (
	"strings"

	"github.com/MikeSquared-Agency/minutes/internal/extractor"
)

// document mirrors the subset of the Docs API Document resource we read.
// Every level is optional; missing fields simply produce no paragraphs.
type document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Body       *struct {
		Content []structuralElement `json:"content"`
	} `json:"body"`
}

type structuralElement struct {
	Paragraph *paragraph `json:"paragraph"`
}

type paragraph struct {
	Elements       []paragraphElement `json:"elements"`
	ParagraphStyle *struct {
		NamedStyleType string `json:"namedStyleType"`
	} `json:"paragraphStyle"`
	Bullet *struct {
		ListID       string `json:"listId"`
		NestingLevel int    `json:"nestingLevel"`
	} `json:"bullet"`
}

type paragraphElement struct {
	TextRun *struct {
		Content string `json:"content"`
	} `json:"textRun"`
}

// Paragraph is a Docs body paragraph adapted to extractor.Paragraph.
type Paragraph struct {
	Heading bool
	Text    string
}

func (p Paragraph) IsHeading() bool       { return p.Heading }
func (p Paragraph) HeadingText() string   { return p.Text }
func (p Paragraph) ParagraphText() string { return p.Text }

func (d *document) paragraphs() []extractor.Paragraph {
	if d == nil || d.Body == nil {
		return nil
	}

	var out []extractor.Paragraph
	for _, el := range d.Body.Content {
		if el.Paragraph == nil {
			continue // tables, section breaks, tables of contents
		}
		out = append(out, el.Paragraph.convert())
	}
	return out
}

func (p *paragraph) convert() Paragraph {
	var sb strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			sb.WriteString(el.TextRun.Content)
		}
	}

	heading := p.ParagraphStyle != nil && isHeadingStyle(p.ParagraphStyle.NamedStyleType)
	// Docs encodes a soft line break (Shift+Enter) as a vertical tab.
	text := strings.ReplaceAll(sb.String(), "\v", "\n")
	// List items render with their glyph; keep it so bullet sections survive extraction.
	if p.Bullet != nil && !heading && strings.TrimSpace(text) != "" && !extractor.HasBullet(text) {
		text = "• " + text
	}
	return Paragraph{Heading: heading, Text: text}
}

func isHeadingStyle(style string) bool {
	return strings.HasPrefix(style, "HEADING_") || style == "TITLE" || style == "SUBTITLE"
}
