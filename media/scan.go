// ABOUTME: Directory scanning for images, videos, and HEIC files.
// ABOUTME: All scans return sorted absolute paths so runs are deterministic.
package media

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
}

var heicExts = map[string]bool{
	".heic": true,
	".heif": true,
}

// Images returns the describable image files under dir, recursively.
func Images(dir string) ([]string, error) { return scan(dir, imageExts) }

// Videos returns the video files under dir, recursively.
func Videos(dir string) ([]string, error) { return scan(dir, videoExts) }

// HEICFiles returns the HEIC/HEIF files under dir, recursively.
func HEICFiles(dir string) ([]string, error) { return scan(dir, heicExts) }

// scan walks dir and collects files whose extension is in exts, skipping
// hidden files and directories. Results are absolute and sorted.
func scan(dir string, exts map[string]bool) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	var paths []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != abs {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(name))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
