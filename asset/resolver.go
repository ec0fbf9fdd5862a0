package asset

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Resolver returns the bytes of the document named `path`.
// Missing documents should be reported with an error wrapping fs.ErrNotExist.
type Resolver interface {
	Resolve(path string) ([]byte, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(path string) ([]byte, error)

func (f ResolverFunc) Resolve(path string) ([]byte, error) { return f(path) }

type fsResolver struct{ fsys fs.FS }

// FS returns a resolver reading from `fsys`, such as an embed.FS.
// Leading slashes are ignored, so that "/icons/a.svg" and
// "icons/a.svg" are the same document.
func FS(fsys fs.FS) Resolver { return fsResolver{fsys} }

func (r fsResolver) Resolve(name string) ([]byte, error) {
	name = path.Clean("/" + name)
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = "."
	}
	return fs.ReadFile(r.fsys, name)
}

// Dir returns a resolver reading files under the directory `root`.
func Dir(root string) Resolver { return FS(os.DirFS(root)) }

// OS resolves paths directly on the file system, relative to the
// working directory. It is the default resolver of a Loader.
var OS Resolver = ResolverFunc(os.ReadFile)

// Map is an in-memory resolver.
type Map map[string][]byte

func (m Map) Resolve(name string) ([]byte, error) {
	if b, ok := m[name]; ok {
		return b, nil
	}
	return nil, &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrNotExist}
}

type chain []Resolver

// Chain returns a resolver trying each of `resolvers` in order:
// the first success wins. When all fail, the errors are joined.
func Chain(resolvers ...Resolver) Resolver { return chain(resolvers) }

func (c chain) Resolve(name string) ([]byte, error) {
	var errs []error
	for _, r := range c {
		b, err := r.Resolve(name)
		if err == nil {
			return b, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrNotExist}
	}
	return nil, errors.Join(errs...)
}
