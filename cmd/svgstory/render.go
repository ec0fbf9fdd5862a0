package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/gallery"
)

type renderOptions struct {
	output        string
	width, height float64
	timeout       time.Duration
}

func (o *renderOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output PNG file (default: the manifest name with a .png extension)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "surface width, overriding the manifest")
	cmd.Flags().Float64Var(&o.height, "height", 0, "surface height, overriding the manifest")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 30*time.Second, "maximum time spent waiting for the images")
}

func (o *renderOptions) outputFor(manifest string) string {
	if o.output != "" {
		return o.output
	}
	base := filepath.Base(manifest)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// load reads and resolves the manifest, applying the size overrides.
func (o *renderOptions) load(path string) (*gallery.Manifest, error) {
	m, err := gallery.Load(path)
	if err != nil {
		return nil, err
	}
	if o.width > 0 {
		m.Width = o.width
	}
	if o.height > 0 {
		m.Height = o.height
	}
	if err := m.Resolve(nil); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return m, nil
}

var renderOpts renderOptions

var renderCmd = &cobra.Command{
	Use:   "render MANIFEST",
	Short: "Render the stories of a manifest to a PNG file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := renderOpts.load(args[0])
		if err != nil {
			return err
		}
		loader, err := m.Loader()
		if err != nil {
			return err
		}
		return renderTo(cmd.Context(), cmd.OutOrStdout(), m, loader, renderOpts.outputFor(args[0]), renderOpts.timeout)
	},
}

func init() {
	renderOpts.register(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

func renderTo(ctx context.Context, out io.Writer, m *gallery.Manifest, loader *asset.Loader, output string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	img, stats, err := m.Render(ctx, loader)
	if err != nil {
		return err
	}
	if err := writePNG(output, img); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %d stories, %d painted, %dx%d pixels, %s\n",
		output, stats.Elements, stats.Painted, img.Rect.Dx(), img.Rect.Dy(), time.Since(start).Round(time.Millisecond))
	return err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
