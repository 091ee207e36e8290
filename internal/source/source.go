package source

import (
	"errors"
	"fmt"
	"image"
)

// Source delivers scanned pages to the extraction pipeline. A page is a full
// raster of the scanner bed, possibly holding several printed photos.
type Source interface {
	PageCount() int
	// PagePath returns the path the page came from, used to derive output names.
	PagePath(index int) string
	RenderPage(index int) (image.Image, error)
	Close() error
}

// InputError is the single fatal error class of the pipeline: the source image
// is missing or cannot be decoded. Everything downstream is a warning.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("не удалось прочитать исходное изображение %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// IsInputError reports whether err wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
