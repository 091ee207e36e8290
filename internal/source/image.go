package source

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp"}

type ImageSource struct {
	paths []string
}

// NewImageSource accepts a single image file or a directory of scans.
func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, &InputError{Path: path, Err: err}
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) PagePath(index int) string {
	return s.paths[index]
}

func (s *ImageSource) RenderPage(index int) (image.Image, error) {
	path := s.paths[index]
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return img, nil
}

func (s *ImageSource) Close() error { return nil }

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}
