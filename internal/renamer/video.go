package renamer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// DefaultFormats are the video extensions recognized without configuration
var DefaultFormats = []string{"mkv", "mp4", "avi", "mov", "m4v", "ts", "wmv"}

// LargestVideo returns path itself when it is a file, otherwise the
// largest file in the directory with one of the given extensions.
// Samples and thumbnails shipped next to a release are skipped that way.
func LargestVideo(path string, formats []string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", types.ErrIO{Op: "stat", Path: path, Err: err}
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", types.ErrIO{Op: "read", Path: path, Err: err}
	}

	set := formatSet(formats)
	var best string
	var bestSize int64 = -1

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !set[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.Size() > bestSize {
			best = filepath.Join(path, entry.Name())
			bestSize = fi.Size()
		}
	}

	if best == "" {
		return "", types.ErrNoVideoFiles{Directory: path}
	}
	return best, nil
}

// formatSet builds a lookup of dotted, lower-cased extensions
func formatSet(formats []string) map[string]bool {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	set := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		set[f] = true
	}
	return set
}

// VideoFilter returns a predicate matching file names with one of the
// given extensions
func VideoFilter(formats []string) func(name string) bool {
	set := formatSet(formats)
	return func(name string) bool {
		return set[strings.ToLower(filepath.Ext(name))]
	}
}
