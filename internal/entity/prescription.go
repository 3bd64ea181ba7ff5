package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is the finalized record produced by one successful pipeline
// run. It is never mutated after creation; the chat layer only reads it.
type Prescription struct {
	ID            uuid.UUID    `json:"id"`
	ExtractedText string       `json:"extracted_text"`
	Explanation   string       `json:"explanation"`
	Medications   []Medication `json:"medications"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Medication is one parsed line of the prescription text. Fields that could
// not be derived from the source text carry the sentinel defaults below.
type Medication struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	Instructions string    `json:"instructions"`
}

// Sentinel values used when a field cannot be derived from the source line.
const (
	DefaultDosage    = "As prescribed"
	DefaultFrequency = "As directed"
)

func NewPrescription(extractedText, explanation string, medications []Medication) Prescription {
	return Prescription{
		ID:            uuid.New(),
		ExtractedText: extractedText,
		Explanation:   explanation,
		Medications:   medications,
		Timestamp:     time.Now().UTC(),
	}
}

func NewMedication(name, dosage, frequency, instructions string) Medication {
	return Medication{
		ID:           uuid.New(),
		Name:         name,
		Dosage:       dosage,
		Frequency:    frequency,
		Instructions: instructions,
	}
}
