package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rxlens/prescription-scanner/internal/entity"
	"github.com/rxlens/prescription-scanner/internal/extract"
	"github.com/rxlens/prescription-scanner/internal/llm"
)

// ErrNoImage is returned when the pipeline is invoked without an image.
var ErrNoImage = errors.New("no image provided")

// Processor drives an image through text extraction, medication parsing and
// explanation generation, exposing live progress and a single terminal
// outcome per run.
//
// Each Run is tagged with a generation counter. Starting a new run (or
// calling Cancel) bumps the counter, and state transitions from an older run
// are discarded, so a stale completion can never overwrite a newer run's
// state.
type Processor struct {
	ocr       extract.TextExtractor
	assistant llm.Assistant
	log       *slog.Logger

	mu       sync.Mutex
	gen      uint64
	state    ProcessingState
	onChange func(ProcessingState)
}

func NewProcessor(ocr extract.TextExtractor, assistant llm.Assistant, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ocr:       ocr,
		assistant: assistant,
		log:       logger,
		state:     Idle(),
	}
}

// OnStateChange registers a callback invoked after every applied state
// transition. The callback runs outside the processor's lock.
func (p *Processor) OnStateChange(fn func(ProcessingState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// State returns a snapshot of the current processing state.
func (p *Processor) State() ProcessingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel abandons any in-flight run. Its eventual completion is discarded.
func (p *Processor) Cancel() {
	p.mu.Lock()
	p.gen++
	p.state = Idle()
	fn := p.onChange
	st := p.state
	p.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// Run processes an image to a finalized Prescription. A nil image fails
// immediately with ErrNoImage, before any capability call. Re-invoking Run
// while a prior run is in flight starts a new generation; the prior run's
// result is discarded when it eventually lands.
func (p *Processor) Run(ctx context.Context, img *extract.Image) (entity.Prescription, error) {
	run := p.begin()
	start := time.Now()

	if img == nil {
		p.apply(run, Failed(ErrNoImage))
		return entity.Prescription{}, ErrNoImage
	}

	p.apply(run, Processing(ProgressExtracting))
	p.log.Info("pipeline.run.start", "run", run, "image_bytes", len(img.Data))

	ocrRes, err := p.ocr.ExtractText(ctx, *img)
	if err != nil {
		p.log.Error("pipeline.ocr.failed", "run", run, "error", err)
		p.apply(run, Failed(err))
		return entity.Prescription{}, err
	}
	p.log.Info("pipeline.ocr.ok",
		"run", run,
		"text_len", len(ocrRes.ExtractedText),
		"fragments", len(ocrRes.BoundingBoxes),
		"confidence", ocrRes.Confidence,
	)

	// Pure, synchronous step; cannot fail.
	medications := ParseMedications(ocrRes.ExtractedText)

	p.apply(run, Processing(ProgressAnalyzing))
	explanation, err := p.assistant.ExplainPrescription(ctx, ocrRes.ExtractedText)
	if err != nil {
		p.log.Error("pipeline.explain.failed", "run", run, "error", err)
		p.apply(run, Failed(err))
		return entity.Prescription{}, err
	}

	p.apply(run, Processing(ProgressPreparing))
	prescription := entity.NewPrescription(ocrRes.ExtractedText, explanation, medications)
	p.apply(run, Completed(prescription))

	p.log.Info("pipeline.run.ok",
		"run", run,
		"prescription_id", prescription.ID,
		"medications", len(medications),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return prescription, nil
}

// begin starts a new generation and makes it current.
func (p *Processor) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return p.gen
}

// apply installs the state transition if run is still the current
// generation. Stale transitions are dropped.
func (p *Processor) apply(run uint64, st ProcessingState) {
	p.mu.Lock()
	if run != p.gen {
		p.mu.Unlock()
		p.log.Debug("pipeline.state.stale_discard", "run", run, "phase", st.Phase.String())
		return
	}
	p.state = st
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}
