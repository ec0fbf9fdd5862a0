package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgimg/svgfont"
	"github.com/benoitkugler/svgimg/svgicon"
)

var inspectFonts string

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE.svg",
	Short: "Print the size, view box and content of an SVG document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		icon, err := svgicon.ReadIcon(args[0], svgicon.WarnErrorMode)
		if err != nil {
			return err
		}
		var fonts svgicon.TextOutliner
		if icon.HasText() {
			if fonts, err = inspectOutliner(inspectFonts); err != nil {
				return err
			}
		}
		return describe(cmd.OutOrStdout(), args[0], icon, fonts)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFonts, "fonts", "", "directory of font files used for text, instead of the system fonts")
	rootCmd.AddCommand(inspectCmd)
}

func inspectOutliner(dir string) (svgicon.TextOutliner, error) {
	if dir == "" {
		return svgfont.System(), nil
	}
	ix := svgfont.NewIndex()
	if err := ix.AddFS(os.DirFS(dir)); err != nil && ix.Empty() {
		return nil, err
	}
	return ix, nil
}

func formatBounds(b svgicon.Bounds) string {
	return fmt.Sprintf("%g %g %g %g", b.X, b.Y, b.W, b.H)
}

func describe(out io.Writer, name string, icon *svgicon.SvgIcon, fonts svgicon.TextOutliner) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", name)

	if w, h, ok := icon.IntrinsicSize(); ok {
		fmt.Fprintf(tw, "size:\t%g x %g\n", w, h)
	} else {
		fmt.Fprintf(tw, "size:\tundefined\n")
	}
	if icon.HasViewBox {
		fmt.Fprintf(tw, "viewBox:\t%s\n", formatBounds(icon.ViewBox))
	}
	if b, ok := icon.ContentBounds(fonts); ok {
		fmt.Fprintf(tw, "content:\t%s\n", formatBounds(b))
	} else {
		fmt.Fprintf(tw, "content:\tempty\n")
	}

	var shapes, texts int
	for _, p := range icon.SVGPaths {
		if p.Text != nil {
			texts++
		} else {
			shapes++
		}
	}
	fmt.Fprintf(tw, "elements:\t%d shapes, %d text spans\n", shapes, texts)
	fmt.Fprintf(tw, "text:\t%t\n", icon.HasText())
	if len(icon.Titles) != 0 {
		fmt.Fprintf(tw, "titles:\t%s\n", strings.Join(icon.Titles, " | "))
	}
	if len(icon.Descriptions) != 0 {
		fmt.Fprintf(tw, "descriptions:\t%s\n", strings.Join(icon.Descriptions, " | "))
	}
	return tw.Flush()
}
