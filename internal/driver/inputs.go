package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// perlExts are the extensions picked up when walking a directory.
var perlExts = []string{".pl", ".pm"}

// IsPerlFile reports whether path has a Perl script or module extension.
func IsPerlFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range perlExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Input is one unit to convert and the root it was found under.
type Input struct {
	Path string
	// Root is the directory argument Path was found in, or Path's own
	// directory for a file argument. Outputs mirror the layout below it.
	Root string
}

// Collect expands the arguments into inputs. A file argument is taken as is
// whatever its extension; a directory contributes its .pl/.pm files, and
// subdirectories only when recursive is set. The result is sorted and free
// of duplicates.
func Collect(args []string, recursive bool) ([]Input, error) {
	seen := make(map[string]struct{})
	var out []Input
	add := func(path, root string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, Input{Path: clean, Root: filepath.Clean(root)})
	}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !st.IsDir() {
			add(arg, filepath.Dir(arg))
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if IsPerlFile(path) {
				add(path, arg)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	// Сортируем для детерминированного порядка
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// OutputPath is where the conversion of in is written: next to the input
// when outDir is empty, otherwise under outDir mirroring in's place below
// its root. The extension becomes .py.
func OutputPath(in Input, outDir string) string {
	name := strings.TrimSuffix(in.Path, filepath.Ext(in.Path)) + ".py"
	if outDir == "" {
		return name
	}
	rel, err := filepath.Rel(in.Root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(name)
	}
	return filepath.Join(outDir, rel)
}
