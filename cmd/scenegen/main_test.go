package main

import (
	"archive/zip"
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scenecraft/scenecraft/internal/document"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSample(t *testing.T, format string) string {
	t.Helper()
	out, err := run(t, "sample", "--format", format)
	if err != nil {
		t.Fatalf("sample --format %s: %v", format, err)
	}
	path := filepath.Join(t.TempDir(), "scene."+format)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSampleRoundTrips(t *testing.T) {
	want := len(document.NewSampleScene().Elements)
	for _, format := range []string{"json", "yaml"} {
		scene, err := readScene(writeSample(t, format))
		if err != nil {
			t.Fatalf("%s: readScene() error = %v", format, err)
		}
		if len(scene.Elements) != want {
			t.Fatalf("%s: got %d elements, want %d", format, len(scene.Elements), want)
		}
	}
}

func TestGenerateWritesFiles(t *testing.T) {
	scene := writeSample(t, "yaml")
	dir := filepath.Join(t.TempDir(), "out")
	if _, err := run(t, "generate", scene, "-o", dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	tests := []struct {
		file string
		want string
	}{
		{file: "GeneratedDesign.jsx", want: "export default function GeneratedDesign()"},
		{file: "index.html", want: "<!DOCTYPE html>"},
		{file: "styles.css", want: ".canvas-container {"},
	}
	for _, tc := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tc.file))
		if err != nil {
			t.Fatalf("%s: %v", tc.file, err)
		}
		if !strings.Contains(string(data), tc.want) {
			t.Fatalf("%s: missing %q", tc.file, tc.want)
		}
	}
}

func TestGenerateZip(t *testing.T) {
	scene := writeSample(t, "json")
	path := filepath.Join(t.TempDir(), "design.zip")
	if _, err := run(t, "generate", scene, "--zip", path); err != nil {
		t.Fatalf("generate --zip: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 3 {
		t.Fatalf("zip has %d files, want 3", len(zr.File))
	}
}

func TestRenderWritesPNG(t *testing.T) {
	scene := writeSample(t, "json")
	path := filepath.Join(t.TempDir(), "preview.png")
	// The sample's /assets/ image is missing, which renders a placeholder.
	if _, err := run(t, "render", scene, "-o", path, "--assets", t.TempDir()); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	opts := document.NewSampleScene().CanvasOptions.Normalize()
	if got := img.Bounds().Dx(); got != int(opts.Width) {
		t.Fatalf("width = %d, want %v", got, opts.Width)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("elements: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	emptyYAML := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(emptyYAML, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown-format", args: []string{"sample", "-f", "toml"}, want: "unknown format"},
		{name: "missing-file", args: []string{"generate", filepath.Join(dir, "nope.json")}, want: "read scene"},
		{name: "bad-yaml", args: []string{"generate", badYAML}, want: "decode yaml scene"},
		{name: "empty-yaml", args: []string{"render", emptyYAML}, want: "empty document"},
		{name: "no-args", args: []string{"render"}, want: "accepts 1 arg"},
	}
	for _, tc := range tests {
		_, err := run(t, tc.args...)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want containing %q", tc.name, err, tc.want)
		}
	}
}

func TestSubmainExitCode(t *testing.T) {
	if got := submain(context.Background(), []string{"sample", "-f", "xml"}); got != 1 {
		t.Fatalf("submain(bad format) = %d, want 1", got)
	}
}
