package extract

import "github.com/otiai10/gosseract/v2"

// tesseractOCR recognizes text in an encoded image with tesseract. A client
// is created per call; tesseract clients are cheap relative to recognition
// and are not safe for concurrent reuse.
func tesseractOCR(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}
