// Package pdfinfo reads basic facts from PDF files: page count and the
// leading text of the first page.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable indicates a file that could not be parsed as PDF.
var ErrUnreadable = errors.New("unreadable PDF")

// maxTextLength bounds FirstPageText.
const maxTextLength = 200

// Info summarises a PDF document.
type Info struct {
	Pages         int    `json:"pages"`
	FirstPageText string `json:"first_page_text,omitempty"`
}

// Inspect opens the PDF at path.
func Inspect(path string) (info *Info, err error) {
	defer recoverParse(&err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	return describe(r), nil
}

// InspectBytes parses an in-memory PDF.
func InspectBytes(data []byte) (info *Info, err error) {
	defer recoverParse(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return describe(r), nil
}

// PageCount is Inspect reduced to the number of pages.
func PageCount(path string) (int, error) {
	info, err := Inspect(path)
	if err != nil {
		return 0, err
	}
	return info.Pages, nil
}

func describe(r *pdf.Reader) *Info {
	info := &Info{Pages: r.NumPage()}
	if info.Pages < 1 {
		return info
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return info
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return info
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	info.FirstPageText = text
	return info
}

// recoverParse converts parser panics on malformed input into ErrUnreadable.
func recoverParse(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrUnreadable, r)
	}
}
