package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/scenecraft/scenecraft/internal/document"
)

func TestCommandRecorderOps(t *testing.T) {
	opts := document.DefaultCanvasOptions()
	text := document.NewElement("t", document.ElementText, 0, 0, opts)
	text.Width, text.Height = 50, 20

	tests := []struct {
		name string
		el   document.Element
		op   string
	}{
		{"rectangle", rect("r", 0, 0, 10, 10), "rect"},
		{"circle", circle("c", 0, 0, 5), "ellipse"},
		{"line", line("l", 0, 0, 10, 10), "path"},
		{"text", text, "text"},
		{"image", document.NewImageElement("i", "a.png", 0, 0, 10, 10), "image"},
		{"component", document.NewComponentElement("k", document.ComponentButton, 0, 0), "component"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewCommandRecorder()
			rec.Draw(tt.el, false)
			cmds := rec.Commands()
			if len(cmds) != 1 {
				t.Fatalf("len(Commands) = %d, want 1", len(cmds))
			}
			if cmds[0].Op != tt.op || cmds[0].ElementID != tt.el.ID {
				t.Errorf("command = %s/%s, want %s/%s", cmds[0].Op, cmds[0].ElementID, tt.op, tt.el.ID)
			}
		})
	}
}

func TestCommandRecorderSkipsUnknown(t *testing.T) {
	rec := NewCommandRecorder()
	rec.Draw(document.Element{ID: "x", Type: "hexagon"}, false)
	if len(rec.Commands()) != 0 {
		t.Errorf("recorded %d commands for unknown type", len(rec.Commands()))
	}
}

func TestLineCommandGeometry(t *testing.T) {
	rec := NewCommandRecorder()
	rec.Draw(line("l", 10, 20, 40, 60), false)
	cmd := rec.Commands()[0]

	if len(cmd.Transform) != 6 {
		t.Fatalf("transform = %v", cmd.Transform)
	}
	if cmd.Transform[4] != 10 || cmd.Transform[5] != 20 {
		t.Errorf("translation = (%v,%v), want (10,20)", cmd.Transform[4], cmd.Transform[5])
	}
	end := cmd.Path[1]
	if length := end[1].(float64); math.Abs(length-50) > 1e-9 {
		t.Errorf("length = %v, want 50", length)
	}
}

func TestEngineDrawCommandsJSON(t *testing.T) {
	e := newTestEngine()
	drag(e, ToolRectangle, Point{X: 0, Y: 0}, Point{X: 20, Y: 20})

	out, err := DrawCommandsToJSON(e.DrawCommands())
	if err != nil {
		t.Fatalf("DrawCommandsToJSON() error = %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("len = %d, want element plus selection", len(decoded))
	}
	if decoded[1]["op"] != "selection" {
		t.Errorf("last op = %v, want selection", decoded[1]["op"])
	}
}

func TestComponentLabel(t *testing.T) {
	tests := []struct {
		ct   document.ComponentType
		want string
	}{
		{document.ComponentButton, "Button"},
		{document.ComponentInput, "Enter text..."},
		{document.ComponentCard, "Card Title"},
		{document.ComponentCheckbox, "Checkbox"},
		{document.ComponentSlider, "50"},
	}
	for _, tt := range tests {
		el := document.NewComponentElement("k", tt.ct, 0, 0)
		if got := ComponentLabel(el.Data.(*document.ComponentData)); got != tt.want {
			t.Errorf("ComponentLabel(%s) = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestFontShorthand(t *testing.T) {
	if got := FontShorthand("", "bold", 16, "Arial"); got != "normal bold 16px Arial" {
		t.Errorf("FontShorthand() = %q", got)
	}
}
