package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/gallery"
	"github.com/benoitkugler/svgimg/svglog"
)

// settle groups the events of one save, editors usually writing
// a file in several steps.
const settle = 100 * time.Millisecond

var watchOpts renderOptions

var watchCmd = &cobra.Command{
	Use:   "watch MANIFEST",
	Short: "Render the stories again each time the manifest or a document changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(cmd.Context(), cmd.OutOrStdout(), args[0], &watchOpts)
	},
}

func init() {
	watchOpts.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// watchedFiles maps the absolute paths of the story documents
// to their sources.
func watchedFiles(m *gallery.Manifest) map[string]asset.Source {
	out := make(map[string]asset.Source)
	for _, st := range m.Stories {
		if st.Path == "" {
			continue
		}
		p := filepath.Join(m.Dir, filepath.FromSlash(st.Path))
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out[p] = asset.Path(st.Path)
	}
	return out
}

// reloadLoader returns the loader to use after `prev` was reloaded as
// `next`. The current loader is kept unless the fonts or the base
// directory changed, which a new resolver or font index depends on.
func reloadLoader(prev, next *gallery.Manifest, current *asset.Loader) (*asset.Loader, error) {
	if prev.Fonts == next.Fonts && prev.Dir == next.Dir {
		return current, nil
	}
	return next.Loader()
}

func watch(ctx context.Context, out io.Writer, manifestPath string, opts *renderOptions) error {
	manifestAbs, err := filepath.Abs(manifestPath)
	if err != nil {
		return err
	}
	m, err := opts.load(manifestPath)
	if err != nil {
		return err
	}
	loader, err := m.Loader()
	if err != nil {
		return err
	}
	output := opts.outputFor(manifestPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// directories are watched, since editors often replace files
	files := watchedFiles(m)
	dirs := map[string]bool{filepath.Dir(manifestAbs): true}
	for p := range files {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	render := func() {
		if err := renderTo(ctx, out, m, loader, output, opts.timeout); err != nil {
			fmt.Fprintln(out, "render failed:", err)
		}
	}
	render()

	var (
		timer          = time.NewTimer(settle)
		reloadManifest bool
		changed        = make(map[string]asset.Source)
	)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			svglog.Logger().Warn("svgstory: watch error", "error", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name, _ := filepath.Abs(ev.Name)
			switch src, isStory := files[name]; {
			case name == manifestAbs:
				reloadManifest = true
			case isStory:
				changed[name] = src
			default:
				continue
			}
			svglog.Logger().Debug("svgstory: change", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(settle)
		case <-timer.C:
			if reloadManifest {
				reloadManifest = false
				next, err := opts.load(manifestPath)
				if err != nil {
					fmt.Fprintln(out, "reload failed:", err)
					continue
				}
				nextLoader, err := reloadLoader(m, next, loader)
				if err != nil {
					fmt.Fprintln(out, "reload failed:", err)
					continue
				}
				if nextLoader != loader {
					svglog.Logger().Debug("svgstory: new loader", "fonts", next.Fonts, "dir", next.Dir)
				}
				m, loader = next, nextLoader
				files = watchedFiles(m)
				for p := range files {
					if dir := filepath.Dir(p); !dirs[dir] {
						if err := watcher.Add(dir); err == nil {
							dirs[dir] = true
						}
					}
				}
				// inline documents are keyed by content: no eviction needed
			}
			for name, src := range changed {
				n := loader.EvictSource(src)
				svglog.Logger().Debug("svgstory: evicted", "file", name, "entries", n)
				delete(changed, name)
			}
			render()
		}
	}
}
