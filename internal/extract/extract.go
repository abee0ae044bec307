// Package extract converts stored resume documents into plain text. PDFs with
// a text layer are read directly; image-only PDFs and raw images go through
// OCR.
package extract

import (
	"bytes"
	"fmt"
	"image/png"
	"path"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Error indicates that no usable text could be produced from a document after
// every extraction path was tried.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// OCRFunc recognizes text in an encoded image.
type OCRFunc func(image []byte) (string, error)

// Extractor turns document bytes into text. The zero value is not usable;
// construct with New or NewWithOCR.
type Extractor struct {
	ocr OCRFunc
}

// New returns an Extractor backed by tesseract OCR.
func New() *Extractor {
	return &Extractor{ocr: tesseractOCR}
}

// NewWithOCR returns an Extractor with a custom OCR implementation.
func NewWithOCR(ocr OCRFunc) *Extractor {
	return &Extractor{ocr: ocr}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func isImage(sourceKey string) bool {
	return imageExtensions[strings.ToLower(path.Ext(sourceKey))]
}

// Extract returns the text content of a document. Image keys are OCRed
// directly. Everything else is treated as a PDF: the text layer is read
// first, and an empty or failed text layer falls back to rasterizing each
// page and OCRing it, concatenated in page order. Empty or whitespace-only
// text after all fallbacks yields an *Error.
func (e *Extractor) Extract(data []byte, sourceKey string) (string, error) {
	var text string

	if isImage(sourceKey) {
		t, err := e.ocr(data)
		if err != nil {
			return "", &Error{Source: sourceKey, Message: "image OCR failed", Cause: err}
		}
		text = t
	} else {
		t, err := pdfText(data)
		if err != nil || strings.TrimSpace(t) == "" {
			t, err = e.ocrPages(data)
			if err != nil {
				return "", &Error{Source: sourceKey, Message: "OCR fallback failed", Cause: err}
			}
		}
		text = t
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{Source: sourceKey, Message: "no text extracted"}
	}
	return text, nil
}

// pdfText reads the PDF text layer. The parser panics on some malformed
// files, so the panic is converted into an error to keep the OCR fallback
// reachable.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ocrPages rasterizes every PDF page and OCRs it, keeping page order.
func (e *Extractor) ocrPages(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", err
	}
	defer func() { _ = doc.Close() }()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		img, err := doc.Image(page)
		if err != nil {
			return "", fmt.Errorf("rasterizing page %d: %w", page, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encoding page %d: %w", page, err)
		}

		text, err := e.ocr(buf.Bytes())
		if err != nil {
			return "", fmt.Errorf("OCR on page %d: %w", page, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
