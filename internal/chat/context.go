package chat

import (
	"strings"

	"github.com/rxlens/prescription-scanner/internal/entity"
)

// BuildContext serializes a prescription into the deterministic text block
// sent alongside every question. Medications appear in list order as
// "- name: dosage, frequency" bullets.
func BuildContext(p entity.Prescription) string {
	bullets := make([]string, 0, len(p.Medications))
	for _, m := range p.Medications {
		bullets = append(bullets, "- "+m.Name+": "+m.Dosage+", "+m.Frequency)
	}

	var b strings.Builder
	b.WriteString("Prescription Analysis:\n\n")
	b.WriteString("Extracted Text: ")
	b.WriteString(p.ExtractedText)
	b.WriteString("\n\nAI Explanation: ")
	b.WriteString(p.Explanation)
	b.WriteString("\n\nMedications:\n")
	b.WriteString(strings.Join(bullets, "\n"))
	return b.String()
}
