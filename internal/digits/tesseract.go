package digits

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

const (
	digitChars   = "123456789"
	ocrSize      = 96 // cells are upscaled before OCR
	ocrThreshold = 128
)

// TesseractRecognizer reads digits with an in-process Tesseract client.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseractRecognizer creates a client restricted to single digits.
func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := client.SetWhitelist(digitChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	// Digits are not dictionary words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &TesseractRecognizer{client: client}, nil
}

// Close releases OCR resources.
func (t *TesseractRecognizer) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Recognize implements Recognizer. Empty cells are skipped.
func (t *TesseractRecognizer) Recognize(ctx context.Context, cells []Cell) (Grid, error) {
	var g Grid
	for _, c := range cells {
		if err := ctx.Err(); err != nil {
			return Grid{}, err
		}
		if c.IsEmpty() {
			continue
		}

		digit, err := t.recognizeCell(c)
		if err != nil {
			return Grid{}, fmt.Errorf("cell %d: %w", c.Index, err)
		}
		g.Set(c.Index, digit)
	}
	return g, nil
}

// ocrImage upscales a cell to dark-on-light two-level form. Resampling
// softens the strokes, so the result is thresholded again.
func ocrImage(c Cell) *image.Gray {
	return segment.Threshold(imaging.Resize(c.ForOCR(), ocrSize, ocrSize, imaging.Lanczos), ocrThreshold)
}

func (t *TesseractRecognizer) recognizeCell(c Cell) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, ocrImage(c)); err != nil {
		return 0, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return 0, fmt.Errorf("OCR failed: %w", err)
	}
	return parseDigit(text), nil
}

// parseDigit returns the first digit 1-9 in text, or 0.
func parseDigit(text string) int {
	i := strings.IndexAny(text, digitChars)
	if i < 0 {
		return 0
	}
	return int(text[i] - '0')
}
