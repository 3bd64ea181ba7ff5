package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VisionConfig holds settings for the remote vision OCR adapter.
type VisionConfig struct {
	Endpoint string        // full annotate URL
	APIKey   string        // sent as a bearer token when non-empty
	Timeout  time.Duration // per-request; default 30s
	Attempts int           // total tries; default 3
	Backoff  time.Duration // fixed delay between tries; default 1s
}

// VisionExtractor implements TextExtractor against a remote vision API that
// returns axis-normalized, bottom-left-origin boxes. The adapter validates
// the payload against a JSON schema, converts each box to top-left pixel
// coordinates and joins fragment texts with newlines.
type VisionExtractor struct {
	cfg    VisionConfig
	http   *http.Client
	log    *slog.Logger
	schema map[string]any
}

type visionRequest struct {
	Image  string `json:"image"` // base64-encoded bytes
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type visionAnnotation struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Box        NormalizedBox `json:"box"`
}

type visionResponse struct {
	Annotations []visionAnnotation `json:"annotations"`
}

func NewVisionExtractor(cfg VisionConfig, logger *slog.Logger) *VisionExtractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionExtractor{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    logger,
		schema: BuildAnnotationJSONSchema(),
	}
}

func (v *VisionExtractor) ExtractText(ctx context.Context, img Image) (OCRResult, error) {
	if len(img.Data) == 0 {
		return OCRResult{}, NewExtractionError(InvalidImage, fmt.Errorf("empty image payload"))
	}
	if img.Width <= 0 || img.Height <= 0 {
		return OCRResult{}, NewExtractionError(InvalidImage, fmt.Errorf("bad dimensions %dx%d", img.Width, img.Height))
	}

	rid := uuid.New().String()
	start := time.Now()
	body := visionRequest{
		Image:  base64.StdEncoding.EncodeToString(img.Data),
		Width:  img.Width,
		Height: img.Height,
	}

	raw, err := v.post(ctx, rid, body)
	if err != nil {
		v.log.Error("ocr.vision.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return OCRResult{}, NewExtractionError(ProviderFailure, err)
	}

	if err := ValidateJSONAgainstSchema(v.schema, raw); err != nil {
		v.log.Error("ocr.vision.schema_validation_failed", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return OCRResult{}, NewExtractionError(ProviderFailure, fmt.Errorf("annotation payload: %w", err))
	}

	var resp visionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return OCRResult{}, NewExtractionError(ProviderFailure, fmt.Errorf("decode annotations: %w", err))
	}

	boxes := make([]TextBoundingBox, 0, len(resp.Annotations))
	fragments := make([]string, 0, len(resp.Annotations))
	for _, a := range resp.Annotations {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		fragments = append(fragments, text)
		boxes = append(boxes, TextBoundingBox{
			Text:       text,
			Frame:      PixelFrame(a.Box, img.Width, img.Height),
			Confidence: a.Confidence,
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
	v.log.Info("ocr.vision.ok",
		"req_id", rid,
		"fragments", len(boxes),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// post sends the annotate request, retrying transient failures with a fixed
// backoff. Retry lives here, in the adapter, not in the pipeline.
func (v *VisionExtractor) post(ctx context.Context, rid string, body visionRequest) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= v.cfg.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.cfg.Backoff):
			}
		}

		raw, status, err := v.send(ctx, bs)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		// 4xx is not going to get better; stop early
		if status >= 400 && status < 500 {
			return nil, err
		}
		v.log.Warn("ocr.vision.retry", "req_id", rid, "attempt", attempt, "status", status, "error", err)
	}
	return nil, fmt.Errorf("annotate failed after %d attempts: %w", v.cfg.Attempts, lastErr)
}

func (v *VisionExtractor) send(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			v.log.Warn("ocr.vision.response_body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("vision status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}
