package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rxlens/prescription-scanner/internal/entity"
	"github.com/rxlens/prescription-scanner/internal/llm"
)

// WelcomeMessage seeds every fresh session as the first assistant message.
const WelcomeMessage = "Hi! I'm here to help you understand your prescription. Feel free to ask me any questions about your medications, dosage, side effects, or anything else related to your prescription."

// TurnErrorMessage is the user-visible signal for a failed turn.
const TurnErrorMessage = "Sorry, I couldn't process your question. Please try again."

// ErrBusy is returned when Submit is called while a prior question is still
// in flight. The new question is rejected, not queued.
var ErrBusy = errors.New("a question is already in flight")

// Session maintains append-ordered chat history for one prescription and
// mediates question/answer turns through the assistant capability. The
// prescription is read-only to the session; the message list is owned
// exclusively by it.
type Session struct {
	prescription entity.Prescription
	assistant    llm.Assistant
	log          *slog.Logger

	mu        sync.Mutex
	messages  []entity.ChatMessage
	awaiting  bool
	errSignal string
}

func NewSession(prescription entity.Prescription, assistant llm.Assistant, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		prescription: prescription,
		assistant:    assistant,
		log:          logger,
	}
	s.messages = append(s.messages, entity.NewChatMessage(WelcomeMessage, false))
	return s
}

// Submit runs one conversation turn. The user message is appended before the
// assistant is called, so it is visible immediately. Whitespace-only input is
// a no-op. A second Submit while one is in flight returns ErrBusy.
//
// On failure the turn's history is preserved: no assistant message is
// appended, and ErrorSignal carries a generic user-visible message until the
// next successful turn.
func (s *Session) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return ErrBusy
	}
	s.awaiting = true
	s.errSignal = ""
	s.messages = append(s.messages, entity.NewChatMessage(question, true))
	s.mu.Unlock()

	answer, err := s.assistant.AnswerQuestion(ctx, question, BuildContext(s.prescription))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = false
	if err != nil {
		s.errSignal = TurnErrorMessage
		s.log.Error("chat.turn.failed", "prescription_id", s.prescription.ID, "error", err)
		return fmt.Errorf("answer question: %w", err)
	}
	s.messages = append(s.messages, entity.NewChatMessage(answer, false))
	s.log.Info("chat.turn.ok",
		"prescription_id", s.prescription.ID,
		"question_len", len(question),
		"answer_len", len(answer),
		"messages", len(s.messages),
	)
	return nil
}

// Messages returns a copy of the history in append order.
func (s *Session) Messages() []entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// IsAwaitingResponse reports whether a turn is in flight.
func (s *Session) IsAwaitingResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// ErrorSignal returns the user-visible message for the last failed turn, or
// "" when the last turn succeeded.
func (s *Session) ErrorSignal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errSignal
}

// Prescription returns the record this session is bound to.
func (s *Session) Prescription() entity.Prescription {
	return s.prescription
}

// Clear empties the history and re-seeds the welcome message.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:0]
	s.messages = append(s.messages, entity.NewChatMessage(WelcomeMessage, false))
	s.errSignal = ""
}
