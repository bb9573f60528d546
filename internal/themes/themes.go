// Package themes brainstorms coloring book themes with a Gemini text model.
// The service keeps one chat session for the process so follow-up prompts
// build on earlier turns.
package themes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/JaimeStill/colorbook/internal/imagegen"
	"github.com/JaimeStill/colorbook/pkg/formatting"
)

const systemInstruction = "You are DreamColor, a creative assistant for a children's coloring book generator. " +
	"Help parents and kids brainstorm fun, imaginative themes (like 'astronaut kittens' or 'underwater castles'). " +
	"Keep suggestions short, magical, and friendly."

const replyFormat = `%s

Always respond only with JSON of the form {"reply": "<one or two friendly sentences>", "themes": ["<theme>"]} ` +
	`listing at most %d short coloring book themes.`

var (
	ErrInvalidInput  = errors.New("invalid theme request")
	ErrNoSuggestions = errors.New("no theme suggestions returned")
)

// MapHTTPStatus maps theme errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSuggestions):
		return http.StatusBadGateway
	}
	return imagegen.MapHTTPStatus(err)
}

// Suggestion is the assistant's answer to a brainstorm prompt.
type Suggestion struct {
	Reply  string   `json:"reply"`
	Themes []string `json:"themes"`
}

// ClientSource resolves the genai client for the active credential.
// *imagegen.ClientPool satisfies it.
type ClientSource interface {
	Client(ctx context.Context) (*genai.Client, error)
}

// Config selects the brainstorm model.
type Config struct {
	Model          string
	MaxThemes      int
	RequestTimeout time.Duration
}

// Service answers brainstorm prompts within a single chat session.
type Service struct {
	cfg     Config
	clients ClientSource
	logger  *slog.Logger

	mu     sync.Mutex
	chat   *genai.Chat
	client *genai.Client
}

// New creates a Service.
func New(cfg Config, clients ClientSource, logger *slog.Logger) *Service {
	if cfg.MaxThemes <= 0 {
		cfg.MaxThemes = 5
	}
	return &Service{
		cfg:     cfg,
		clients: clients,
		logger:  logger.With("system", "themes"),
	}
}

// Suggest sends prompt as the next turn of the brainstorm chat. Turns are
// serialized; a request error leaves the history unchanged.
func (s *Service) Suggest(ctx context.Context, prompt string) (*Suggestion, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chat, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		classified := imagegen.Classify(err)
		s.logger.Warn("theme brainstorm failed", "model", s.cfg.Model, "error", classified)
		return nil, classified
	}

	suggestion, err := formatting.Parse[Suggestion](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSuggestions, err)
	}

	suggestion.Reply = strings.TrimSpace(suggestion.Reply)
	suggestion.Themes = clean(suggestion.Themes, s.cfg.MaxThemes)
	if len(suggestion.Themes) == 0 {
		return nil, ErrNoSuggestions
	}

	s.logger.Info(
		"themes suggested",
		"model", s.cfg.Model,
		"count", len(suggestion.Themes),
		"turns", len(chat.History(true))/2,
	)
	return &suggestion, nil
}

// Reset discards the chat history. The next prompt starts a new session.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chat = nil
	s.client = nil
	s.logger.Info("brainstorm session reset")
}

// session returns the active chat, creating it on first use. A change of
// credential moves the existing history to a chat on the new client.
// The caller holds s.mu.
func (s *Service) session(ctx context.Context) (*genai.Chat, error) {
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, imagegen.Classify(err)
	}

	if s.chat != nil && s.client == client {
		return s.chat, nil
	}

	var history []*genai.Content
	if s.chat != nil {
		history = s.chat.History(true)
	}

	chat, err := client.Chats.Create(ctx, s.cfg.Model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			fmt.Sprintf(replyFormat, systemInstruction, s.cfg.MaxThemes),
			genai.RoleUser,
		),
		ResponseMIMEType: "application/json",
	}, history)
	if err != nil {
		return nil, fmt.Errorf("create brainstorm chat: %w", err)
	}

	s.chat = chat
	s.client = client
	return chat, nil
}

// clean trims, de-duplicates case-insensitively, and caps themes at limit.
func clean(themes []string, limit int) []string {
	seen := make(map[string]bool, len(themes))
	out := make([]string, 0, min(len(themes), limit))

	for _, theme := range themes {
		theme = strings.TrimSpace(theme)
		key := strings.ToLower(theme)
		if theme == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, theme)
		if len(out) == limit {
			break
		}
	}
	return out
}
