package codegen

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/scenecraft/scenecraft/internal/document"
)

// The HTML and CSS outputs form a layout skeleton: each element gets one
// class positioned by its bounding box, without stroke, fill or opacity.

const htmlIndent = "    "

func generateHTML(items []item) string {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n")
	buf.WriteString("<html lang=\"en\">\n")
	buf.WriteString("<head>\n")
	buf.WriteString("  <meta charset=\"UTF-8\">\n")
	buf.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	buf.WriteString("  <title>Generated Design</title>\n")
	buf.WriteString("  <link rel=\"stylesheet\" href=\"styles.css\">\n")
	buf.WriteString("</head>\n")
	buf.WriteString("<body>\n")
	buf.WriteString("  <div class=\"canvas-container\">\n")

	if len(items) == 0 {
		buf.WriteString(htmlIndent + "<!-- No elements -->\n")
	}
	for _, it := range items {
		buf.WriteString(htmlIndent)
		buf.WriteString(htmlElement(it))
		buf.WriteByte('\n')
	}

	buf.WriteString("  </div>\n")
	buf.WriteString("</body>\n")
	buf.WriteString("</html>\n")
	return buf.String()
}

func htmlElement(it item) string {
	class := fmt.Sprintf("class=\"%s\"", it.className())
	esc := html.EscapeString

	switch d := it.el.Data.(type) {
	case *document.TextData:
		return fmt.Sprintf("<div %s>%s</div>", class, esc(d.Content))
	case *document.ImageData:
		return fmt.Sprintf("<img %s src=\"%s\" alt=\"%s\">", class, esc(d.Src), esc(d.Alt))
	case *document.ComponentData:
		switch d.ComponentType {
		case document.ComponentButton:
			return fmt.Sprintf("<button %s>%s</button>", class, esc(d.Text))
		case document.ComponentInput:
			return fmt.Sprintf("<input %s type=\"text\" placeholder=\"%s\" value=\"%s\">", class, esc(d.Placeholder), esc(d.Text))
		case document.ComponentCard:
			return fmt.Sprintf("<div %s><h3>%s</h3><p>%s</p></div>", class, esc(d.Title), esc(d.Content))
		case document.ComponentCheckbox:
			return fmt.Sprintf("<label %s><input type=\"checkbox\"%s> %s</label>", class, checked(d.Checked), esc(d.Label))
		case document.ComponentSlider:
			return fmt.Sprintf("<input %s type=\"range\" min=\"%s\" max=\"%s\" value=\"%s\">", class, num(d.Min), num(d.Max), num(d.Value))
		case document.ComponentToggle:
			return fmt.Sprintf("<label %s><input type=\"checkbox\" role=\"switch\"%s> %s</label>", class, checked(d.Checked), esc(d.Label))
		}
		return fmt.Sprintf("<div %s>%s</div>", class, esc(d.Label))
	}
	return fmt.Sprintf("<div %s></div>", class)
}

func checked(b bool) string {
	if b {
		return " checked"
	}
	return ""
}

func generateCSS(items []item, opts document.CanvasOptions) string {
	var buf bytes.Buffer

	writeRule(&buf, ".canvas-container", []prop{
		{"position", "relative"},
		{"width", px(opts.Width)},
		{"height", px(opts.Height)},
		{"backgroundColor", colorOr(opts.Background, "transparent")},
		{"overflow", "hidden"},
	})
	for _, it := range items {
		buf.WriteByte('\n')
		writeRule(&buf, "."+it.className(), boxProps(it.el))
	}
	return buf.String()
}

func writeRule(buf *bytes.Buffer, selector string, props []prop) {
	fmt.Fprintf(buf, "%s {\n", selector)
	for _, p := range props {
		fmt.Fprintf(buf, "  %s: %s;\n", kebab(p.name), p.value)
	}
	buf.WriteString("}\n")
}

// kebab converts a camelCase property name to its CSS form.
func kebab(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
