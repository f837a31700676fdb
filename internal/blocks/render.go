package blocks

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
)

// Renderer turns documents into HTML or plain text. Text blocks are
// treated as Markdown.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New()}
}

// HTML renders every block in order, one element per block.
func (r *Renderer) HTML(d Document) (string, error) {
	var buf bytes.Buffer
	for _, b := range d {
		fmt.Fprintf(&buf, "<section class=\"block block-%s\" data-block-id=\"%s\">\n", b.Kind(), html.EscapeString(b.ID))
		switch c := b.Content.(type) {
		case Text:
			if err := r.md.Convert([]byte(c), &buf); err != nil {
				return "", fmt.Errorf("render block %s: %w", b.ID, err)
			}
		case Image:
			writeImage(&buf, string(c), "Note attachment")
		case Drawing:
			writeImage(&buf, string(c), "Drawing")
		case Chart:
			buf.WriteString("<ul class=\"chart\">\n")
			for _, p := range c {
				fmt.Fprintf(&buf, "<li><span>%s</span> <span>%s</span></li>\n",
					html.EscapeString(p.Label), strconv.FormatFloat(p.Value, 'g', -1, 64))
			}
			buf.WriteString("</ul>\n")
		case Table:
			buf.WriteString("<table>\n")
			for i, row := range c {
				cell := "td"
				if i == 0 {
					cell = "th"
				}
				buf.WriteString("<tr>")
				for _, v := range row {
					fmt.Fprintf(&buf, "<%s>%s</%s>", cell, html.EscapeString(v), cell)
				}
				buf.WriteString("</tr>\n")
			}
			buf.WriteString("</table>\n")
		}
		buf.WriteString("</section>\n")
	}
	return buf.String(), nil
}

func writeImage(buf *bytes.Buffer, src, alt string) {
	if !safeImageSource(src) {
		fmt.Fprintf(buf, "<p class=\"missing-image\">%s</p>\n", alt)
		return
	}
	fmt.Fprintf(buf, "<img src=\"%s\" alt=\"%s\">\n", html.EscapeString(src), alt)
}

func safeImageSource(src string) bool {
	return strings.HasPrefix(src, "data:image/") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "http://")
}

// PlainText renders the document as text, one line per block. Media blocks
// appear as bracketed markers.
func PlainText(d Document) string {
	var sb strings.Builder
	for _, b := range d {
		switch c := b.Content.(type) {
		case Text:
			sb.WriteString(string(c))
		case Image:
			sb.WriteString("[image]")
		case Drawing:
			sb.WriteString("[drawing]")
		case Chart:
			parts := make([]string, len(c))
			for i, p := range c {
				parts[i] = p.Label + "=" + strconv.FormatFloat(p.Value, 'g', -1, 64)
			}
			sb.WriteString("[chart] " + strings.Join(parts, ", "))
		case Table:
			rows := make([]string, len(c))
			for i, row := range c {
				rows[i] = strings.Join(row, " | ")
			}
			sb.WriteString("[table]\n" + strings.Join(rows, "\n"))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
