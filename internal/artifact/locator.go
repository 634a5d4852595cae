package artifact

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Located is a resource found by the Locator.
type Located struct {
	// Names identifies the resource within its kind.
	Names Names

	// Dir is the directory holding the information file.
	Dir string

	// File is the matched file (the information file or an auxiliary file).
	File string
}

// InformationFile returns the information file path of the located resource.
func (l Located) InformationFile(d Descriptor) string {
	return filepath.Join(l.Dir, d.InformationFile)
}

// Locate maps files onto resources of the described kind. Only information
// files match, unless withAuxiliary is set, in which case auxiliary files
// also identify their resource. Results are unique by names and keep the
// order in which they were first seen.
func Locate(files []string, root string, d Descriptor, withAuxiliary bool) []Located {
	var found []Located
	seen := make(map[string]bool)

	for _, file := range files {
		names, ok := match(file, root, d, withAuxiliary)
		if !ok {
			continue
		}
		key := names.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		found = append(found, Located{
			Names: names,
			Dir:   filepath.Dir(file),
			File:  file,
		})
	}

	return found
}

// match checks a single file against the descriptor's layout.
func match(file, root string, d Descriptor, withAuxiliary bool) (Names, bool) {
	base := filepath.Base(file)
	if base != d.InformationFile && !(withAuxiliary && slices.Contains(d.AuxiliaryFiles, base)) {
		return nil, false
	}

	names := make(Names, d.Depth())
	next := len(names) - 1
	dir := filepath.Dir(file)

	for i := len(d.Layout) - 1; i >= 0; i-- {
		name := filepath.Base(dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root before the layout was exhausted.
			return nil, false
		}

		switch seg := d.Layout[i]; seg {
		case Wildcard:
			if name == "" || name == "." || name == string(filepath.Separator) {
				return nil, false
			}
			names[next] = name
			next--
		default:
			if name != seg {
				return nil, false
			}
		}
		dir = parent
	}

	if !SamePath(dir, root) {
		return nil, false
	}
	return names, true
}

// SamePath reports whether two paths name the same directory. Paths are
// cleaned first so trailing separators do not matter; the comparison is
// case-insensitive on Windows and macOS.
func SamePath(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if caseInsensitiveFS() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
