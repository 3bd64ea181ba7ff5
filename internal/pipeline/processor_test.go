package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rxlens/prescription-scanner/internal/extract"
)

type fakeExtractor struct {
	fn    func(ctx context.Context, img extract.Image) (extract.OCRResult, error)
	calls atomic.Int64
}

func (f *fakeExtractor) ExtractText(ctx context.Context, img extract.Image) (extract.OCRResult, error) {
	f.calls.Add(1)
	return f.fn(ctx, img)
}

type fakeAssistant struct {
	explainFn func(ctx context.Context, text string) (string, error)
	answerFn  func(ctx context.Context, question, contextText string) (string, error)
}

func (f *fakeAssistant) ExplainPrescription(ctx context.Context, text string) (string, error) {
	if f.explainFn != nil {
		return f.explainFn(ctx, text)
	}
	return "explanation", nil
}

func (f *fakeAssistant) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	if f.answerFn != nil {
		return f.answerFn(ctx, question, contextText)
	}
	return "answer", nil
}

func textResult(text string) extract.OCRResult {
	return extract.OCRResult{ExtractedText: text, Confidence: 0.9}
}

func TestRun_NoImage(t *testing.T) {
	ext := &fakeExtractor{fn: func(context.Context, extract.Image) (extract.OCRResult, error) {
		return extract.OCRResult{}, nil
	}}
	p := NewProcessor(ext, &fakeAssistant{}, nil)

	_, err := p.Run(context.Background(), nil)
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	st := p.State()
	if st.Phase != PhaseFailed {
		t.Errorf("phase: got %s, want failed", st.Phase)
	}
	if !errors.Is(st.Err, ErrNoImage) {
		t.Errorf("state error: got %v", st.Err)
	}
	if ext.calls.Load() != 0 {
		t.Errorf("extractor called %d times, want 0", ext.calls.Load())
	}
}

func TestRun_Success(t *testing.T) {
	ext := &fakeExtractor{fn: func(context.Context, extract.Image) (extract.OCRResult, error) {
		return textResult("Amoxicillin 500mg Twice daily"), nil
	}}
	asst := &fakeAssistant{explainFn: func(_ context.Context, text string) (string, error) {
		if text != "Amoxicillin 500mg Twice daily" {
			return "", fmt.Errorf("unexpected text %q", text)
		}
		return "take with care", nil
	}}

	p := NewProcessor(ext, asst, nil)

	var mu sync.Mutex
	var phases []Phase
	var progress []string
	p.OnStateChange(func(st ProcessingState) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, st.Phase)
		if st.Phase == PhaseProcessing {
			progress = append(progress, st.ProgressMessage)
		}
	})

	rx, err := p.Run(context.Background(), &extract.Image{Data: []byte{1}, Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if rx.ExtractedText != "Amoxicillin 500mg Twice daily" {
		t.Errorf("extracted text: got %q", rx.ExtractedText)
	}
	if rx.Explanation != "take with care" {
		t.Errorf("explanation: got %q", rx.Explanation)
	}
	if len(rx.Medications) != 1 || rx.Medications[0].Name != "Amoxicillin" {
		t.Errorf("medications: got %+v", rx.Medications)
	}
	if rx.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	st := p.State()
	if st.Phase != PhaseCompleted {
		t.Fatalf("phase: got %s, want completed", st.Phase)
	}
	if st.Prescription == nil || st.Prescription.ID != rx.ID {
		t.Errorf("state prescription mismatch")
	}

	mu.Lock()
	defer mu.Unlock()
	wantProgress := []string{ProgressExtracting, ProgressAnalyzing, ProgressPreparing}
	if len(progress) != len(wantProgress) {
		t.Fatalf("progress messages: got %v", progress)
	}
	for i := range wantProgress {
		if progress[i] != wantProgress[i] {
			t.Errorf("progress[%d]: got %q, want %q", i, progress[i], wantProgress[i])
		}
	}
	if phases[len(phases)-1] != PhaseCompleted {
		t.Errorf("last phase: got %s", phases[len(phases)-1])
	}
}

func TestRun_ExtractionFailure(t *testing.T) {
	extractErr := extract.NewExtractionError(extract.NoTextFound, nil)
	ext := &fakeExtractor{fn: func(context.Context, extract.Image) (extract.OCRResult, error) {
		return extract.OCRResult{}, extractErr
	}}
	p := NewProcessor(ext, &fakeAssistant{}, nil)

	_, err := p.Run(context.Background(), &extract.Image{Data: []byte{1}})
	if err == nil {
		t.Fatal("expected error")
	}
	kind, ok := extract.KindOf(err)
	if !ok || kind != extract.NoTextFound {
		t.Errorf("error kind: got %v ok=%t", kind, ok)
	}
	st := p.State()
	if st.Phase != PhaseFailed || st.Err == nil {
		t.Errorf("state: got phase=%s err=%v", st.Phase, st.Err)
	}
}

func TestRun_ExplanationFailure(t *testing.T) {
	ext := &fakeExtractor{fn: func(context.Context, extract.Image) (extract.OCRResult, error) {
		return textResult("DrugA 10mg"), nil
	}}
	boom := errors.New("model down")
	asst := &fakeAssistant{explainFn: func(context.Context, string) (string, error) {
		return "", boom
	}}
	p := NewProcessor(ext, asst, nil)

	_, err := p.Run(context.Background(), &extract.Image{Data: []byte{1}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
	st := p.State()
	if st.Phase != PhaseFailed || !errors.Is(st.Err, boom) {
		t.Errorf("state: got phase=%s err=%v", st.Phase, st.Err)
	}
	if st.Prescription != nil {
		t.Error("no partial prescription may be exposed")
	}
}

func TestRun_StaleRunDiscarded(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var call atomic.Int64

	ext := &fakeExtractor{fn: func(ctx context.Context, _ extract.Image) (extract.OCRResult, error) {
		if call.Add(1) == 1 {
			close(started)
			<-gate
			return textResult("StaleDrug 1mg"), nil
		}
		return textResult("FreshDrug 2mg"), nil
	}}
	p := NewProcessor(ext, &fakeAssistant{}, nil)

	img := &extract.Image{Data: []byte{1}, Width: 1, Height: 1}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run(context.Background(), img)
	}()
	<-started

	// Second run begins while the first is blocked in extraction.
	fresh, err := p.Run(context.Background(), img)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// Let the first run finish; its completion must be discarded.
	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not finish")
	}

	st := p.State()
	if st.Phase != PhaseCompleted {
		t.Fatalf("phase: got %s", st.Phase)
	}
	if st.Prescription.ExtractedText != "FreshDrug 2mg" {
		t.Errorf("state reflects stale run: %q", st.Prescription.ExtractedText)
	}
	if st.Prescription.ID != fresh.ID {
		t.Errorf("state prescription is not the second run's record")
	}
}

func TestCancel_DiscardsInFlightRun(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})

	ext := &fakeExtractor{fn: func(ctx context.Context, _ extract.Image) (extract.OCRResult, error) {
		close(started)
		<-gate
		return textResult("DrugA 10mg"), nil
	}}
	p := NewProcessor(ext, &fakeAssistant{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run(context.Background(), &extract.Image{Data: []byte{1}})
	}()
	<-started

	p.Cancel()
	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish")
	}

	if st := p.State(); st.Phase != PhaseIdle {
		t.Errorf("phase after cancel: got %s, want idle", st.Phase)
	}
}

func TestRun_RetryAfterFailureStartsFresh(t *testing.T) {
	var call atomic.Int64
	ext := &fakeExtractor{fn: func(context.Context, extract.Image) (extract.OCRResult, error) {
		if call.Add(1) == 1 {
			return extract.OCRResult{}, extract.NewExtractionError(extract.ProviderFailure, errors.New("flaky"))
		}
		return textResult("DrugA 10mg"), nil
	}}
	p := NewProcessor(ext, &fakeAssistant{}, nil)
	img := &extract.Image{Data: []byte{1}}

	if _, err := p.Run(context.Background(), img); err == nil {
		t.Fatal("first run should fail")
	}
	if st := p.State(); st.Phase != PhaseFailed {
		t.Fatalf("phase: got %s", st.Phase)
	}

	rx, err := p.Run(context.Background(), img)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	st := p.State()
	if st.Phase != PhaseCompleted || st.Prescription.ID != rx.ID {
		t.Errorf("retry did not complete cleanly: %+v", st)
	}
}
