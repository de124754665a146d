package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type pdfPages struct {
	r *pdf.Reader
}

// OpenPDF is the default PageOpener. The pdf package panics on some
// malformed inputs, so panics are turned into errors.
func OpenPDF(data []byte) (pages PageReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	return pdfPages{r: r}, nil
}

func (p pdfPages) NumPage() int {
	return p.r.NumPage()
}

func (p pdfPages) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page %d: %v", i, r)
		}
	}()

	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// cleanText collapses whitespace and drops invalid UTF-8 sequences.
func cleanText(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		s = string(v)
	}
	return strings.Join(strings.Fields(s), " ")
}
