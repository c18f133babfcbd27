package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover resolves the input argument into the ordered list of files to
// convert. A single file is taken as-is; a directory yields its .ts files,
// walking subdirectories only when recursive is set. Paths are sorted
// lexicographically for deterministic processing order.
func Discover(input string, recursive bool) ([]string, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input not found: %s", input)
	}
	if !fi.IsDir() {
		return []string{input}, nil
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isTransportStream(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isTransportStream(e.Name()) {
				files = append(files, filepath.Join(input, e.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func isTransportStream(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ts")
}
