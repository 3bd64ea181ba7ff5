package llm

import "strings"

// SystemPrompt frames every model call.
const SystemPrompt = "You are a helpful medical assistant. Always emphasize the importance of consulting healthcare professionals."

// BuildExplainPrompt asks the model for a patient-friendly walkthrough of the
// raw prescription text.
func BuildExplainPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a medical assistant helping patients understand their prescriptions. ")
	b.WriteString("Analyze this prescription text and provide a clear, patient-friendly explanation:\n\n")
	b.WriteString("Prescription text: ")
	b.WriteString(text)
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. What medication(s) are prescribed\n")
	b.WriteString("2. What condition(s) they typically treat\n")
	b.WriteString("3. General dosage and frequency guidance\n")
	b.WriteString("4. Important safety reminders\n")
	b.WriteString("5. When to contact healthcare providers\n\n")
	b.WriteString("Keep the explanation clear, accurate, and emphasize the importance of following medical professional guidance.")
	return b.String()
}

// BuildAnswerPrompt pairs a free-form patient question with the serialized
// prescription context.
func BuildAnswerPrompt(question, contextText string) string {
	var b strings.Builder
	b.WriteString("You are a medical assistant helping a patient understand their prescription.\n\n")
	b.WriteString("Prescription context: ")
	b.WriteString(contextText)
	b.WriteString("\n\nPatient question: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a helpful, accurate answer. Always emphasize consulting healthcare providers for medical decisions and personalized advice.")
	return b.String()
}
