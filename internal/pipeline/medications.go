package pipeline

import (
	"strings"

	"github.com/rxlens/prescription-scanner/internal/entity"
)

// Placeholder medication appended when no line of the extracted text parses.
const (
	PlaceholderName         = "Prescription Medication"
	PlaceholderInstructions = "Follow your doctor's instructions"
)

// ParseMedications derives a best-effort medication list from raw extracted
// text: one medication per line with at least two space-separated tokens,
// first token as name, second as dosage, third (if any) as frequency, and
// the whole line as instructions.
//
// This is a line heuristic, not NLP. Lines with a different word order
// ("Take Amoxicillin 500mg ...") will misparse; downstream consumers depend
// on the current behavior, so keep it as is.
func ParseMedications(text string) []entity.Medication {
	var medications []entity.Medication

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := strings.Split(line, " ")
		if len(tokens) < 2 {
			continue
		}
		frequency := entity.DefaultFrequency
		if len(tokens) > 2 {
			frequency = tokens[2]
		}
		medications = append(medications, entity.NewMedication(tokens[0], tokens[1], frequency, line))
	}

	if len(medications) == 0 {
		medications = append(medications, entity.NewMedication(
			PlaceholderName,
			entity.DefaultDosage,
			entity.DefaultFrequency,
			PlaceholderInstructions,
		))
	}
	return medications
}
