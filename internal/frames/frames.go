// Package frames loads still images as frames for the detector CLIs.
package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"gocv.io/x/gocv"
)

var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// IsFrame reports whether path has a supported image extension.
func IsFrame(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// List expands the arguments into frame paths. Directories contribute
// their image files sorted by name; files are kept in argument order.
func List(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && IsFrame(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, filepath.Join(arg, n))
		}
	}
	return out, nil
}

// Decode reads an image file.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Load reads an image file into a 3-channel Mat. The caller closes it.
func Load(path string) (gocv.Mat, error) {
	img, _, err := Decode(path)
	if err != nil {
		return gocv.Mat{}, err
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert image: %w", err)
	}
	return m, nil
}

// Save writes a Mat to path; the format follows the extension.
func Save(path string, m gocv.Mat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if ok := gocv.IMWrite(path, m); !ok {
		return fmt.Errorf("failed to write %s", path)
	}
	return nil
}
