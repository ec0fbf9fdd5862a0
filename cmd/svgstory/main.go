// Command svgstory renders galleries of SVG stories through the
// image element, watches them for changes, and inspects SVG files.
//
// Usage:
//
//	svgstory render gallery.yaml -o gallery.png
//	svgstory watch gallery.toml
//	svgstory inspect icon.svg
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgimg/svglog"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "svgstory",
	Short: "Render and inspect SVG image stories",
	Long: `svgstory renders the stories listed in a gallery manifest (YAML or TOML)
into a PNG image, using the same pipeline as the SVG image element:
asset loading, 2x rasterization, and fitting into the element bounds.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		svglog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "svgstory:", err)
		stop()
		os.Exit(1)
	}
}
