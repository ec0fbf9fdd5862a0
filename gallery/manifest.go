// Package gallery describes collections of SVG stories, rendered
// through the image element on an offscreen surface.
//
// A manifest is written in YAML or TOML:
//
//	title: Icons
//	width: 320
//	height: 200
//	background: white
//	stories:
//	  - name: logo
//	    path: icons/logo.svg
//	    box_height: 64
//	  - name: dot
//	    inline: <svg width="8" height="8"><circle r="4" cx="4" cy="4"/></svg>
//	    flex: 1
package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/svgicon"
)

// Default surface size, used when the manifest does not give one.
const (
	DefaultWidth  = 480
	DefaultHeight = 320
)

// Format is the syntax of a manifest file.
type Format uint8

const (
	YAML Format = iota
	TOML
)

// FormatOf returns the format matching the extension of `path`.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return 0, fmt.Errorf("unsupported manifest extension %q (expected .yaml, .yml or .toml)", ext)
	}
}

// Manifest lists the stories of a gallery and the surface they are rendered on.
type Manifest struct {
	Title      string  `yaml:"title" toml:"title"`
	Width      float64 `yaml:"width" toml:"width"`
	Height     float64 `yaml:"height" toml:"height"`
	Scale      float64 `yaml:"scale" toml:"scale"`
	Background string  `yaml:"background" toml:"background"`
	Padding    float64 `yaml:"padding" toml:"padding"`
	Gap        float64 `yaml:"gap" toml:"gap"`
	// Fonts is an optional directory of font files, used
	// instead of the system fonts for <text> elements.
	Fonts   string  `yaml:"fonts" toml:"fonts"`
	Stories []Story `yaml:"stories" toml:"stories"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-" toml:"-"`

	background color.NRGBA
}

// Story is one SVG document of the gallery.
type Story struct {
	Name string `yaml:"name" toml:"name"`
	// Path is resolved relative to the manifest directory.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
	// Inline is the document text itself.
	Inline string `yaml:"inline,omitempty" toml:"inline,omitempty"`

	// Width and Height are the original size of the document,
	// read from the document itself when zero.
	Width  float64 `yaml:"width,omitempty" toml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" toml:"height,omitempty"`

	// BoxWidth and BoxHeight size the element; zero means auto.
	BoxWidth  float64 `yaml:"box_width,omitempty" toml:"box_width,omitempty"`
	BoxHeight float64 `yaml:"box_height,omitempty" toml:"box_height,omitempty"`
	Flex      float64 `yaml:"flex,omitempty" toml:"flex,omitempty"`
}

// Source returns the document of the story.
func (st Story) Source() asset.Source {
	if st.Path != "" {
		return asset.Path(st.Path)
	}
	return asset.String(st.Inline)
}

// Decode parses a manifest. Unknown fields are rejected.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse yaml manifest: %w", err)
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse toml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %d", format)
	}
	return &m, nil
}

// Load reads the manifest file at `path`, whose format is given by its
// extension. Its directory is used to resolve the story paths.
func Load(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Resolver returns the resolver used for the story paths.
func (m *Manifest) Resolver() asset.Resolver {
	if m.Dir == "" {
		return asset.Dir(".")
	}
	return asset.Dir(m.Dir)
}

// Resolve checks the manifest and fills the defaults. Missing story
// sizes are read from the documents, obtained through `r`
// (Manifest.Resolver if nil).
func (m *Manifest) Resolve(r asset.Resolver) error {
	if r == nil {
		r = m.Resolver()
	}
	var errs []error

	if m.Width == 0 {
		m.Width = DefaultWidth
	}
	if m.Height == 0 {
		m.Height = DefaultHeight
	}
	if m.Scale == 0 {
		m.Scale = 1
	}
	if m.Width < 0 || m.Height < 0 || m.Scale < 0 || m.Padding < 0 || m.Gap < 0 {
		errs = append(errs, errors.New("negative surface dimension"))
	}
	if bg := strings.TrimSpace(m.Background); bg != "" {
		c, err := svgicon.ParseColor(bg)
		if err != nil {
			errs = append(errs, fmt.Errorf("background: %w", err))
		}
		m.background = c
	}

	for i := range m.Stories {
		st := &m.Stories[i]
		if st.Name == "" {
			st.Name = fmt.Sprintf("story-%d", i+1)
		}
		if err := st.resolve(r); err != nil {
			errs = append(errs, fmt.Errorf("story %q: %w", st.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (st *Story) resolve(r asset.Resolver) error {
	switch {
	case st.Path == "" && st.Inline == "":
		return errors.New("one of path or inline is required")
	case st.Path != "" && st.Inline != "":
		return errors.New("path and inline are exclusive")
	}
	if st.Width < 0 || st.Height < 0 || st.BoxWidth < 0 || st.BoxHeight < 0 || st.Flex < 0 {
		return errors.New("negative dimension")
	}
	if st.Width > 0 && st.Height > 0 {
		return nil
	}

	data := []byte(st.Inline)
	if st.Path != "" {
		var err error
		if data, err = r.Resolve(st.Path); err != nil {
			return err
		}
	}
	icon, err := svgicon.Parse(data, svgicon.IgnoreErrorMode)
	if err != nil {
		return err
	}
	w, h, ok := icon.IntrinsicSize()
	if !ok {
		return errors.New("the document has no size: width and height are required")
	}
	// keep the aspect ratio when only one is given
	switch {
	case st.Width > 0:
		st.Height = st.Width * h / w
	case st.Height > 0:
		st.Width = st.Height * w / h
	default:
		st.Width, st.Height = w, h
	}
	return nil
}
