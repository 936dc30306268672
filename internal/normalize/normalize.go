package normalize

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmptyDocument is the single fatal precondition: no metadata can be
// produced from an empty document.
var ErrEmptyDocument = errors.New("empty document")

// pageMarker matches standalone page artifacts left behind by text
// extraction: form feeds, "Page 3", "Page 3 of 12", "--- page break ---".
var pageMarker = regexp.MustCompile(`(?mi)^[ \t]*(?:\f|page[ \t]+\d+(?:[ \t]+of[ \t]+\d+)?|-{2,}[ \t]*page[ \t]*break[ \t]*-{2,})[ \t]*$`)

var (
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts raw document text into the canonical form every
// extraction stage receives: LF line endings, page markers removed,
// trailing whitespace stripped, blank-line runs collapsed. It is pure
// and deterministic; character offsets reported by the stages refer to
// this string. When the content is HTML (by mime type or sniffing),
// visible text is extracted first.
//
// Returns ErrEmptyDocument when nothing remains after cleanup.
func Normalize(content, mimeType string) (string, error) {
	if isHTML(content, mimeType) {
		if doc, err := html.Parse(strings.NewReader(content)); err == nil {
			content = visibleText(doc)
		}
	}

	// Line endings first so the marker regexes see uniform input
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	content = pageMarker.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\f", "\n")
	content = trailingSpace.ReplaceAllString(content, "")
	content = blankRuns.ReplaceAllString(content, "\n\n")
	content = strings.TrimSpace(content)

	if content == "" {
		return "", ErrEmptyDocument
	}
	return content, nil
}

// Length returns the character (rune) count of normalized text
func Length(normalized string) int {
	return len([]rune(normalized))
}

func isHTML(content, mimeType string) bool {
	if strings.Contains(strings.ToLower(mimeType), "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// visibleText extracts text nodes from HTML, skipping scripts/styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
