//go:build !tinygo

package fatvol

import (
	"sort"
	"strings"
)

// node is one file or directory in the in-memory fake volume.
type node struct {
	name     string
	isDir    bool
	hidden   bool
	system   bool
	data     []byte
	children map[string]*node
}

// MemVolume is a host-testable Volume backed by an in-memory tree, standing
// in for the real FAT library (github.com/dargueta/disko's driver on
// hardware) in unit tests. Paths use "/" separators,
// matching original_source's path building ("/" + filename appended to
// curPath).
type MemVolume struct {
	root    *node
	mounted bool
}

// NewMemVolume returns an empty in-memory volume.
func NewMemVolume() *MemVolume {
	return &MemVolume{root: &node{name: "", isDir: true, children: map[string]*node{}}}
}

func (v *MemVolume) Mount() error   { v.mounted = true; return nil }
func (v *MemVolume) Unmount() error { v.mounted = false; return nil }

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (v *MemVolume) find(p string) (*node, bool) {
	n := v.root
	for _, part := range splitPath(p) {
		if !n.isDir {
			return nil, false
		}
		child, ok := n.children[part]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Put adds a file or directory directly into the fake volume, for test
// fixture setup; intermediate directories are created as needed.
func (v *MemVolume) Put(p string, isDir bool, data []byte) {
	parts := splitPath(p)
	n := v.root
	for i, part := range parts {
		last := i == len(parts)-1
		child, ok := n.children[part]
		if !ok {
			child = &node{name: part, isDir: !last || isDir, children: map[string]*node{}}
			n.children[part] = child
		}
		if last {
			child.isDir = isDir
			child.data = data
		}
		n = child
	}
}

// SetHidden marks an already-Put entry hidden/system, for directory-filter
// test fixtures.
func (v *MemVolume) SetHidden(p string, hidden, system bool) {
	if n, ok := v.find(p); ok {
		n.hidden = hidden
		n.system = system
	}
}

func (v *MemVolume) Open(p string, write bool) (File, error) {
	n, ok := v.find(p)
	if !ok {
		return nil, ErrNotExist
	}
	if n.isDir {
		return nil, ErrNotExist
	}
	return &memFile{n: n}, nil
}

func (v *MemVolume) OpenDir(p string) (Dir, error) {
	n, ok := v.find(p)
	if !ok || !n.isDir {
		return nil, ErrNotExist
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return &memDir{n: n, names: names}, nil
}

func (v *MemVolume) WriteFile(p string, data []byte) error {
	v.Put(p, false, append([]byte(nil), data...))
	return nil
}

type memFile struct {
	n   *node
	pos int64
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.n.data)) {
		return 0, nil
	}
	n := copy(p, f.n.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	copy(f.n.data[f.pos:end], p)
	f.pos = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64) error { f.pos = offset; return nil }
func (f *memFile) Size() int64             { return int64(len(f.n.data)) }
func (f *memFile) Close() error            { return nil }

type memDir struct {
	n     *node
	names []string
	i     int
}

func (d *memDir) Next() (Entry, bool, error) {
	if d.i >= len(d.names) {
		return Entry{}, false, nil
	}
	name := d.names[d.i]
	d.i++
	child := d.n.children[name]
	return Entry{
		Name:      name,
		ShortName: shortNameFor(name),
		IsDir:     child.isDir,
		Hidden:    child.hidden,
		System:    child.system,
	}, true, nil
}

func (d *memDir) Close() error { return nil }

// shortNameFor returns "" when name already fits an 8.3 pattern, matching
// original_source's "no altname when lfn is 8.3" rule, else a best-effort
// truncated 8.3 alternate, for exercising the browse/loader alt-name path
// in tests without a real FAT driver.
func shortNameFor(name string) string {
	base, ext, _ := strings.Cut(name, ".")
	if len(base) <= 8 && len(ext) <= 3 && !strings.Contains(base, " ") {
		return ""
	}
	if len(base) > 8 {
		base = base[:6] + "~1"
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	short := strings.ToUpper(base)
	if ext != "" {
		short += "." + strings.ToUpper(ext)
	}
	return short
}
