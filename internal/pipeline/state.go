package pipeline

import "github.com/rxlens/prescription-scanner/internal/entity"

// Phase enumerates the pipeline's lifecycle positions. Exactly one holds at
// any time; transitions are one-directional except Failed -> Processing on
// manual retry.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProcessing:
		return "processing"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress messages surfaced while processing.
const (
	ProgressExtracting = "Extracting text from image..."
	ProgressAnalyzing  = "Analyzing prescription with AI..."
	ProgressPreparing  = "Preparing results..."
)

// ProcessingState is a snapshot of pipeline progress. ProgressMessage is set
// only while processing, Prescription only when completed, Err only when
// failed.
type ProcessingState struct {
	Phase           Phase
	ProgressMessage string
	Prescription    *entity.Prescription
	Err             error
}

func Idle() ProcessingState {
	return ProcessingState{Phase: PhaseIdle}
}

func Processing(message string) ProcessingState {
	return ProcessingState{Phase: PhaseProcessing, ProgressMessage: message}
}

func Completed(p entity.Prescription) ProcessingState {
	return ProcessingState{Phase: PhaseCompleted, Prescription: &p}
}

func Failed(err error) ProcessingState {
	return ProcessingState{Phase: PhaseFailed, Err: err}
}
