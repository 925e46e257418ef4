package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/safety"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	sessionWindow      = 10
	conversationWindow = 6
	contextTopK        = 3

	fallbackNoGenerator = "I'm sorry, but I'm currently unable to generate responses. Please check the system configuration."
	fallbackGenFailed   = "I apologize, but I encountered an error generating a response. Please try again."
)

type chatSession struct {
	id       string
	messages []*model.ChatMessage
}

func (s *chatSession) add(role, content string, meta map[string]interface{}) {
	s.messages = append(s.messages, &model.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Meta:      meta,
	})
	if len(s.messages) > sessionWindow {
		s.messages = s.messages[len(s.messages)-sessionWindow:]
	}
}

// conversationContext renders the most recent turns as "Role: content" lines.
func (s *chatSession) conversationContext() string {
	msgs := s.messages
	if len(msgs) > conversationWindow {
		msgs = msgs[len(msgs)-conversationWindow:]
	}
	titler := cases.Title(language.English)
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, titler.String(msg.Role)+": "+msg.Content)
	}
	return strings.Join(parts, "\n")
}

// ChatResult is one completed chat turn.
type ChatResult struct {
	Response    string
	SessionID   string
	Timestamp   string
	ContextUsed bool
}

// ChatService runs retrieval-augmented conversations. Sessions live in
// memory, capped to the last few turns, keyed by client-chosen ids.
type ChatService struct {
	retrieval *RetrievalService
	generator ai.IGenerator
	vertical  string
	persona   string

	mu       sync.Mutex
	sessions map[string]*chatSession
}

type ChatOption func(*ChatService)

// WithPersona overrides the default assistant persona line.
func WithPersona(persona string) ChatOption {
	return func(s *ChatService) {
		s.persona = persona
	}
}

func NewChatService(retrieval *RetrievalService, generator ai.IGenerator, vertical string, opts ...ChatOption) *ChatService {
	s := &ChatService{
		retrieval: retrieval,
		generator: generator,
		vertical:  vertical,
		persona:   "You are a helpful assistant. Answer from the provided context when it is relevant, and say so when it is not.",
		sessions:  make(map[string]*chatSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat appends the user turn, retrieves context, generates a reply and
// appends it to the session.
func (s *ChatService) Chat(ctx context.Context, sessionID, userMessage string) (*ChatResult, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, fmt.Errorf("message is required")
	}
	if sessionID == "" {
		sessionID = "default"
	}
	session := s.session(sessionID)

	s.mu.Lock()
	session.add("user", userMessage, nil)
	conversation := session.conversationContext()
	s.mu.Unlock()

	var retrieved string
	if s.retrieval != nil {
		retrieved = s.retrieval.ContextFor(ctx, userMessage, contextTopK)
	}
	prompt := s.buildPrompt(retrieved, conversation, userMessage)
	response := s.generate(ctx, prompt)

	contextUsed := retrieved != ""
	s.mu.Lock()
	session.add("assistant", response, map[string]interface{}{"context_used": contextUsed})
	s.mu.Unlock()

	return &ChatResult{
		Response:    response,
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ContextUsed: contextUsed,
	}, nil
}

// SessionCount reports how many sessions are live.
func (s *ChatService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// History returns a copy of the session transcript, nil for unknown ids.
func (s *ChatService) History(sessionID string) []*model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]*model.ChatMessage, len(session.messages))
	copy(out, session.messages)
	return out
}

func (s *ChatService) session(id string) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		session = &chatSession{id: id}
		s.sessions[id] = session
	}
	return session
}

func (s *ChatService) buildPrompt(retrieved, conversation, userMessage string) string {
	var b strings.Builder
	b.WriteString(safety.Preamble(s.vertical))
	b.WriteString("\n\n")
	b.WriteString(s.persona)
	b.WriteString("\n\n")
	if retrieved != "" {
		b.WriteString("Based on the following information:\n\n")
		b.WriteString(retrieved)
		b.WriteString("\n\nAnd our conversation so far:\n")
	} else {
		b.WriteString("Our conversation so far:\n")
	}
	b.WriteString(conversation)
	b.WriteString("\n\nPlease provide a helpful response to: ")
	b.WriteString(userMessage)
	return b.String()
}

func (s *ChatService) generate(ctx context.Context, prompt string) string {
	if s.generator == nil {
		return fallbackNoGenerator
	}
	out, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Error("generation failed", zap.Error(err))
		return fallbackGenFailed
	}
	return strings.TrimSpace(out)
}
