// Command scenegen turns scene files into code and PNG previews without a
// running server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/codegen"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
	"github.com/scenecraft/scenecraft/internal/export"
	"github.com/scenecraft/scenecraft/internal/raster"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := submain(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func submain(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "scenegen:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scenegen",
		Short:         "Generate code and previews from scene files",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newSampleCmd())
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var outDir string
	var zipPath string
	cmd := &cobra.Command{
		Use:   "generate <scene>",
		Short: "Write React, HTML and CSS for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := readScene(args[0])
			if err != nil {
				return err
			}
			out := codegen.Generate(scene.Elements, scene.CanvasOptions)

			if zipPath != "" {
				return writeFile(zipPath, func(w io.Writer) error {
					return export.WriteBundle(w, out)
				})
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, f := range export.Files(out) {
				path := filepath.Join(outDir, f.Name)
				if err := os.WriteFile(path, []byte(f.Body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", f.Name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the generated files")
	cmd.Flags().StringVar(&zipPath, "zip", "", "write a zip bundle to this path instead")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var outPath string
	var assetDir string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render a scene to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := readScene(args[0])
			if err != nil {
				return err
			}
			fonts, err := raster.LoadFonts()
			if err != nil {
				return err
			}
			e := engine.NewEngine(engine.WithTextMeasurer(fonts))
			e.LoadScene(scene)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			asset.Hydrate(ctx, asset.NewLoader(assetDir, timeout, asset.AllowPrivateNetworks()), e)

			if outPath == "" {
				outPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}
			if err := writeFile(outPath, func(w io.Writer) error {
				return raster.RenderPNG(w, e, fonts)
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "PNG path (default: scene path with .png)")
	cmd.Flags().StringVar(&assetDir, "assets", "./data/assets", "directory backing /assets/ image sources")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "time allowed for loading images")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the sample scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodeScene(document.NewSampleScene(), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// readScene loads a scene file. Files ending in .yaml or .yml are YAML,
// everything else is JSON. "-" reads stdin as JSON.
func readScene(path string) (*document.Scene, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}
	return document.DecodeScene(data)
}

// yamlToJSON re-encodes a YAML document so the scene's JSON decoding rules
// apply to it unchanged.
func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml scene: %w", err)
	}
	if v == nil {
		return nil, errors.New("decode yaml scene: empty document")
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("decode yaml scene: %w", err)
	}
	return out, nil
}

func encodeScene(scene *document.Scene, format string) ([]byte, error) {
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	switch format {
	case "json":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("encode scene: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode scene: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode scene: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
