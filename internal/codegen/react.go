package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/scenecraft/scenecraft/internal/document"
)

const reactIndent = "      "

func generateReact(items []item, opts document.CanvasOptions) string {
	var buf bytes.Buffer

	buf.WriteString("import React from 'react';\n\n")
	buf.WriteString("export default function GeneratedDesign() {\n")
	buf.WriteString("  return (\n")
	fmt.Fprintf(&buf, "    <div style={%s}>\n", styleObject([]prop{
		{"position", "relative"},
		{"width", px(opts.Width)},
		{"height", px(opts.Height)},
		{"backgroundColor", colorOr(opts.Background, "transparent")},
		{"overflow", "hidden"},
	}))

	if len(items) == 0 {
		buf.WriteString(reactIndent + "{/* No elements */}\n")
	}
	for _, it := range items {
		buf.WriteString(reactIndent)
		buf.WriteString(reactElement(it.el))
		buf.WriteByte('\n')
	}

	buf.WriteString("    </div>\n")
	buf.WriteString("  );\n")
	buf.WriteString("}\n")
	return buf.String()
}

// styleObject renders a React inline style object literal.
func styleObject(props []prop) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, fmt.Sprintf("%s: %s", p.name, jsString(p.value)))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// jsxText renders s as a JSX expression so markup characters stay literal.
func jsxText(s string) string {
	return "{" + jsString(s) + "}"
}

func reactElement(el document.Element) string {
	style := "style={" + styleObject(elementProps(el)) + "}"

	switch d := el.Data.(type) {
	case *document.TextData:
		return fmt.Sprintf("<div %s>%s</div>", style, jsxText(d.Content))
	case *document.ImageData:
		return fmt.Sprintf("<img src={%s} alt={%s} %s />", jsString(d.Src), jsString(d.Alt), style)
	case *document.ComponentData:
		return reactComponent(d, style)
	}
	return fmt.Sprintf("<div %s />", style)
}

func reactComponent(d *document.ComponentData, style string) string {
	switch d.ComponentType {
	case document.ComponentButton:
		return fmt.Sprintf("<button %s>%s</button>", style, jsxText(d.Text))
	case document.ComponentInput:
		return fmt.Sprintf("<input type=\"text\" placeholder={%s} defaultValue={%s} %s />",
			jsString(d.Placeholder), jsString(d.Text), style)
	case document.ComponentCard:
		return fmt.Sprintf("<div %s><h3 style={{ margin: 0, marginBottom: \"8px\" }}>%s</h3><p style={{ margin: 0 }}>%s</p></div>",
			style, jsxText(d.Title), jsxText(d.Content))
	case document.ComponentCheckbox:
		return fmt.Sprintf("<label %s><input type=\"checkbox\" defaultChecked={%t} /> %s</label>",
			style, d.Checked, jsxText(d.Label))
	case document.ComponentSlider:
		return fmt.Sprintf("<input type=\"range\" min={%s} max={%s} defaultValue={%s} %s />",
			num(d.Min), num(d.Max), num(d.Value), style)
	case document.ComponentToggle:
		return fmt.Sprintf("<label %s><input type=\"checkbox\" role=\"switch\" defaultChecked={%t} /> %s</label>",
			style, d.Checked, jsxText(d.Label))
	}
	return fmt.Sprintf("<div %s>%s</div>", style, jsxText(d.Label))
}
