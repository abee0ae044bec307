package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blankPDF builds a valid PDF with n content-free pages: the text layer
// yields nothing, but every page rasterizes.
func blankPDF(n int) []byte {
	var buf bytes.Buffer
	var offsets []int
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> >>\nendobj\n", i+3))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtract_ImageKeyUsesOCRDirectly(t *testing.T) {
	var ocrCalls int
	extractor := NewWithOCR(func(image []byte) (string, error) {
		ocrCalls++
		assert.Equal(t, []byte("fake image bytes"), image)
		return "Jane Doe\nSoftware Engineer", nil
	})

	text, err := extractor.Extract([]byte("fake image bytes"), "resumes/jane.PNG")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSoftware Engineer", text)
	assert.Equal(t, 1, ocrCalls)
}

func TestExtract_ImageOCRFailure(t *testing.T) {
	cause := errors.New("tesseract not installed")
	extractor := NewWithOCR(func([]byte) (string, error) {
		return "", cause
	})

	_, err := extractor.Extract([]byte("bytes"), "resumes/jane.jpg")
	require.Error(t, err)

	var extractErr *Error
	require.ErrorAs(t, err, &extractErr)
	assert.ErrorIs(t, err, cause)
}

func TestExtract_WhitespaceOnlyImageTextFails(t *testing.T) {
	extractor := NewWithOCR(func([]byte) (string, error) {
		return " \n\t ", nil
	})

	_, err := extractor.Extract([]byte("bytes"), "resumes/blank.jpeg")
	require.Error(t, err)

	var extractErr *Error
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, err.Error(), "no text extracted")
}

func TestExtract_EmptyTextLayerFallsBackToPageOCR(t *testing.T) {
	var ocrCalls int
	extractor := NewWithOCR(func(image []byte) (string, error) {
		assert.NotEmpty(t, image)
		ocrCalls++
		return fmt.Sprintf("page %d text ", ocrCalls), nil
	})

	text, err := extractor.Extract(blankPDF(2), "resumes/scanned.pdf")
	require.NoError(t, err)

	// One OCR pass per page, concatenated in page order.
	assert.Equal(t, 2, ocrCalls)
	assert.Equal(t, "page 1 text page 2 text ", text)
}

func TestExtract_GarbageDocumentFails(t *testing.T) {
	// Not a PDF: the text layer errors and the rasterizer cannot open it
	// either, so the fallback chain is exhausted.
	extractor := NewWithOCR(func([]byte) (string, error) {
		return "should never be reached", nil
	})

	_, err := extractor.Extract([]byte("definitely not a pdf"), "resumes/broken.pdf")
	require.Error(t, err)

	var extractErr *Error
	require.ErrorAs(t, err, &extractErr)
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"resumes/a.jpg", true},
		{"resumes/a.JPEG", true},
		{"resumes/a.png", true},
		{"resumes/a.pdf", false},
		{"resumes/a", false},
		{"resumes/a.docx", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, isImage(tt.key))
		})
	}
}

func TestPDFText_InvalidBytes(t *testing.T) {
	_, err := pdfText([]byte("not a pdf"))
	assert.Error(t, err)
}
