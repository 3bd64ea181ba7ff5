package llm

import (
	"context"
	"strings"
)

// MockAssistant is a deterministic, offline Assistant used when no API key is
// configured. Answers are routed on question keywords so the chat flow stays
// exercisable in development.
type MockAssistant struct{}

func NewMockAssistant() *MockAssistant { return &MockAssistant{} }

func (m *MockAssistant) ExplainPrescription(_ context.Context, _ string) (string, error) {
	return mockExplanation, nil
}

func (m *MockAssistant) AnswerQuestion(_ context.Context, question, _ string) (string, error) {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "side effect"):
		return mockSideEffectsAnswer, nil
	case strings.Contains(q, "take") || strings.Contains(q, "dose"):
		return mockDosingAnswer, nil
	case strings.Contains(q, "food") || strings.Contains(q, "eat"):
		return mockFoodAnswer, nil
	case strings.Contains(q, "stop") || strings.Contains(q, "finish"):
		return mockStoppingAnswer, nil
	default:
		return mockGenericAnswer, nil
	}
}

const mockExplanation = `Based on the prescription text provided, here's what I can tell you:

**Medications Identified:**
The prescription appears to contain medication information that requires proper medical guidance for safe use.

**General Guidance:**
- Take medications exactly as prescribed by your healthcare provider
- Follow the dosage instructions carefully
- Be aware of potential side effects and interactions
- Keep medications in their original containers
- Store medications properly (away from heat, light, and moisture)

**Important Reminders:**
- Never share prescription medications with others
- Complete the full course of treatment even if you feel better
- Contact your healthcare provider if you experience unusual symptoms
- Keep track of refill dates and quantities

This analysis is for educational purposes only. Always consult with your healthcare provider or pharmacist for personalized medical advice.`

const mockSideEffectsAnswer = `Common side effects can vary depending on the specific medication, but generally may include:

- Nausea or stomach upset
- Dizziness or drowsiness
- Headache
- Changes in appetite
- Skin reactions

**Important:** This is general information only. For specific side effects related to your medication, read the medication guide provided with your prescription, consult your pharmacist, and contact your doctor immediately if you experience severe or concerning symptoms.`

const mockDosingAnswer = `For proper medication administration:

**General Guidelines:**
- Take exactly as prescribed - don't skip or double doses
- Take at the same time each day for consistency
- Follow food instructions (with food, on empty stomach, etc.)
- Use the measuring device provided, not household spoons

**If You Miss a Dose:**
- Take it as soon as you remember
- If it's almost time for the next dose, skip the missed dose
- Never take two doses at once to "catch up"

Always refer to your prescription label and medication guide for specific instructions for your medication.`

const mockFoodAnswer = `Medication and food interactions are important to consider:

- Some medications work better on an empty stomach
- Others should be taken with food to reduce stomach irritation
- Dairy products can affect some antibiotics
- Grapefruit can interact with many medications
- Alcohol should generally be avoided with medications

For your specific medication, check the prescription label for food instructions and ask your pharmacist about specific food interactions.`

const mockStoppingAnswer = `About stopping or finishing your medication:

**Important Rules:**
- Never stop taking prescribed medication without consulting your healthcare provider
- Complete the full course, even if you feel better
- Stopping early can lead to treatment failure or resistance

Contact your doctor if you're experiencing concerning side effects, want to stop the medication for any reason, or your symptoms aren't improving as expected.`

const mockGenericAnswer = `Thank you for your question about your prescription. While I can provide general information, the best answer to your specific question would come from your prescribing doctor, your pharmacist, or the medication information sheet provided with your prescription.

If you're experiencing any concerning symptoms or have urgent questions about your medication, please contact your healthcare provider or pharmacist right away.

Is there a more specific aspect of your medication that you'd like general information about?`
