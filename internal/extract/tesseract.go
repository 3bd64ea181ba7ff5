package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig holds settings for the on-device OCR adapter.
type TesseractConfig struct {
	Language    string // default "eng"
	TessdataDir string // optional override for TESSDATA_PREFIX
}

// TesseractExtractor implements TextExtractor with a local Tesseract engine.
// It needs no network and is the default capability when no vision endpoint
// is configured.
type TesseractExtractor struct {
	cfg TesseractConfig
	log *slog.Logger
}

func NewTesseractExtractor(cfg TesseractConfig, logger *slog.Logger) *TesseractExtractor {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractExtractor{cfg: cfg, log: logger}
}

func (t *TesseractExtractor) ExtractText(ctx context.Context, img Image) (OCRResult, error) {
	if len(img.Data) == 0 {
		return OCRResult{}, NewExtractionError(InvalidImage, fmt.Errorf("empty image payload"))
	}
	if err := ctx.Err(); err != nil {
		return OCRResult{}, NewExtractionError(ProviderFailure, err)
	}

	start := time.Now()

	// gosseract clients are not safe for reuse across goroutines; one per call.
	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			t.log.Warn("ocr.tesseract.close_error", "error", err)
		}
	}()

	if err := client.SetLanguage(t.cfg.Language); err != nil {
		return OCRResult{}, NewExtractionError(ProviderFailure, fmt.Errorf("set language: %w", err))
	}
	if t.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataDir); err != nil {
			return OCRResult{}, NewExtractionError(ProviderFailure, fmt.Errorf("set tessdata dir: %w", err))
		}
	}
	if err := client.SetImageFromBytes(img.Data); err != nil {
		return OCRResult{}, NewExtractionError(InvalidImage, fmt.Errorf("set image: %w", err))
	}

	lines, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		t.log.Error("ocr.tesseract.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return OCRResult{}, NewExtractionError(ProviderFailure, fmt.Errorf("tesseract: %w", err))
	}

	boxes := make([]TextBoundingBox, 0, len(lines))
	fragments := make([]string, 0, len(lines))
	for _, ln := range lines {
		text := strings.TrimSpace(ln.Word)
		if text == "" {
			continue
		}
		fragments = append(fragments, text)
		boxes = append(boxes, TextBoundingBox{
			Text: text,
			Frame: Rect{
				X: float64(ln.Box.Min.X),
				Y: float64(ln.Box.Min.Y),
				W: float64(ln.Box.Dx()),
				H: float64(ln.Box.Dy()),
			},
			// tesseract reports 0..100
			Confidence: ln.Confidence / 100.0,
		})
	}

	if len(fragments) == 0 {
		return OCRResult{}, NewExtractionError(NoTextFound, nil)
	}

	res := OCRResult{
		ExtractedText: strings.Join(fragments, "\n"),
		Confidence:    boxes[0].Confidence,
		BoundingBoxes: boxes,
	}
	t.log.Info("ocr.tesseract.ok",
		"fragments", len(boxes),
		"text_len", len(res.ExtractedText),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
