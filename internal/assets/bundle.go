// Package assets resolves the poster manifest and the product videos bundled
// with the app.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrResourceNotFound is returned when a video id has no bundled file.
var ErrResourceNotFound = errors.New("resource not found")

// Resource is a resolved media file.
type Resource struct {
	ID   string
	Path string
}

// Resolver maps catalog ids to media resources.
type Resolver interface {
	Resolve(id string) (Resource, error)
}

// Bundle resolves videos stored as <id>.<ext> in a file system.
type Bundle struct {
	fsys fs.FS
	root string
	ext  string
}

// NewBundle serves files from fsys. Resolved paths are joined onto root.
func NewBundle(fsys fs.FS, root, ext string) *Bundle {
	return &Bundle{fsys: fsys, root: root, ext: strings.TrimPrefix(ext, ".")}
}

// NewDirBundle serves files from a directory on disk.
func NewDirBundle(dir, ext string) (*Bundle, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("asset dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("asset dir: %s is not a directory", dir)
	}
	return NewBundle(os.DirFS(dir), dir, ext), nil
}

func (b *Bundle) Resolve(id string) (Resource, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return Resource{}, fmt.Errorf("%w: invalid id %q", ErrResourceNotFound, id)
	}
	name := id + "." + b.ext
	fi, err := fs.Stat(b.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resource{}, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
		}
		return Resource{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if fi.IsDir() {
		return Resource{}, fmt.Errorf("%w: %s is a directory", ErrResourceNotFound, name)
	}
	return Resource{ID: id, Path: filepath.Join(b.root, name)}, nil
}

// List returns the ids of all bundled videos, sorted.
func (b *Bundle) List() ([]string, error) {
	entries, err := fs.ReadDir(b.fsys, ".")
	if err != nil {
		return nil, err
	}

	suffix := "." + b.ext
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(path.Ext(name), suffix) {
			ids = append(ids, strings.TrimSuffix(name, path.Ext(name)))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Missing reports which of ids cannot be resolved by r.
func Missing(r Resolver, ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, err := r.Resolve(id); err != nil {
			out = append(out, id)
		}
	}
	return out
}

// Virtual resolves every id listed in a manifest without touching disk. It
// backs the simulated media provider.
type Virtual struct {
	ids map[string]bool
	ext string
}

// NewVirtual returns a resolver for the manifest catalog.
func NewVirtual(m *Manifest) *Virtual {
	ids := make(map[string]bool, len(m.Videos))
	for _, id := range m.Videos {
		ids[id] = true
	}
	return &Virtual{ids: ids, ext: m.VideoExt}
}

func (v *Virtual) Resolve(id string) (Resource, error) {
	if !v.ids[id] {
		return Resource{}, fmt.Errorf("%w: %s.%s", ErrResourceNotFound, id, v.ext)
	}
	return Resource{ID: id, Path: id + "." + v.ext}, nil
}

// Remove drops id from the resolver, simulating an asset missing from the
// bundle.
func (v *Virtual) Remove(id string) {
	delete(v.ids, id)
}
