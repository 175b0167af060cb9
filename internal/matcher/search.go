package matcher

import (
	"os"
	"path/filepath"
	"strings"
)

type candidate struct {
	path  string
	name  string
	isDir bool
	depth int
}

// FindNames looks through the library root for an already placed entry of
// the same event that carries fighter names. Directories without names are
// entered at most one level deep; symlink cycles are cut by a visited set.
// The first names found in depth-first enumeration order are returned.
func (m *Matcher) FindNames(eventNumber string) string {
	if m.root == "" || eventNumber == "" {
		return ""
	}

	needle := strings.ToLower(eventNumber)
	visited := make(map[string]bool)
	markVisited(visited, m.root)

	stack := pushEntries(nil, m.root, 0)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !strings.Contains(strings.ToLower(Normalize(c.name)), needle) {
			continue
		}

		name := c.name
		if !c.isDir {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		desc := m.Parse(name)
		if desc.EventNumber != eventNumber {
			continue
		}
		if desc.FighterNames != "" {
			return desc.FighterNames
		}

		if c.isDir && c.depth < m.maxDepth && markVisited(visited, c.path) {
			stack = pushEntries(stack, c.path, c.depth+1)
		}
	}

	return ""
}

// pushEntries appends the entries of dir in reverse so they pop in order
func pushEntries(stack []candidate, dir string, depth int) []candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return stack
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		path := filepath.Join(dir, e.Name())
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}
		stack = append(stack, candidate{path: path, name: e.Name(), isDir: isDir, depth: depth})
	}
	return stack
}

// markVisited records the resolved path of dir, reporting whether it was new
func markVisited(visited map[string]bool, dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = filepath.Clean(dir)
	}
	if visited[resolved] {
		return false
	}
	visited[resolved] = true
	return true
}
