package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzPDFSource renders pages of a scanned multi-page PDF at a fixed DPI.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PagePath(index int) string {
	// Страницы одного PDF различаем суффиксом, чтобы имена фото не пересекались.
	if f.doc.NumPage() == 1 {
		return f.path
	}
	return fmt.Sprintf("%s#p%d", f.path, index+1)
}

func (f *FitzPDFSource) RenderPage(index int) (image.Image, error) {
	// fitz.Document не потокобезопасен, каждый воркер открывает свою копию.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, &InputError{Path: f.path, Err: err}
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, float64(f.dpi))
	if err != nil {
		return nil, &InputError{Path: f.path, Err: err}
	}
	return img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
