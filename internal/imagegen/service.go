// Package imagegen wraps a single coloring-page exchange with the Gemini image
// models and classifies each outcome as an image, a credential failure, a
// missing image, or a transient failure.
package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/JaimeStill/colorbook/pkg/formatting"
)

const stylePrompt = "A black and white coloring page for kids. Theme: %s. " +
	"Visual Style: thick bold black outlines, clean white background, simple shapes, " +
	"no shading, no grayscale, suitable for coloring."

// Payload is a generated image.
type Payload struct {
	Data      []byte
	MediaType string
}

// Generator performs one blocking image request.
type Generator interface {
	Generate(ctx context.Context, prompt string, tier Tier) (*Payload, error)
}

// Config selects models and pacing for the Gemini image service.
type Config struct {
	StandardModel     string
	ElevatedModel     string
	AspectRatio       string
	RequestTimeout    time.Duration
	RequestsPerMinute int
	Burst             int
}

// Service is the Gemini-backed Generator.
type Service struct {
	cfg     Config
	clients *ClientPool
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Service. Requests are paced to cfg.RequestsPerMinute.
func New(cfg Config, clients *ClientPool, logger *slog.Logger) *Service {
	rpm := max(cfg.RequestsPerMinute, 1)
	return &Service{
		cfg:     cfg,
		clients: clients,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), max(cfg.Burst, 1)),
		logger:  logger.With("system", "imagegen"),
	}
}

// StylePrompt wraps a page prompt in the coloring-page visual style.
func StylePrompt(pagePrompt string) string {
	return fmt.Sprintf(stylePrompt, pagePrompt)
}

// Model returns the model identity used for tier.
func (s *Service) Model(tier Tier) string {
	if tier.Elevated() {
		return s.cfg.ElevatedModel
	}
	return s.cfg.StandardModel
}

// Generate requests one coloring page. Failures are returned as *Error
// values of kind ErrCredentialRequired, ErrNoImageReturned, or ErrTransient.
func (s *Service) Generate(ctx context.Context, prompt string, tier Tier) (*Payload, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, Classify(err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, Classify(err)
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	model := s.Model(tier)
	start := time.Now()
	s.logger.Info("requesting page image", "model", model, "tier", tier)

	resp, err := client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(StylePrompt(prompt)),
		s.generateConfig(tier),
	)
	if err != nil {
		classified := Classify(err)
		s.logger.Warn("page image request failed", "model", model, "error", classified)
		return nil, classified
	}

	payload, err := extractImage(resp)
	if err != nil {
		s.logger.Warn("page image missing from response", "model", model, "error", err)
		return nil, err
	}

	s.logger.Info(
		"page image received",
		"model", model,
		"media_type", payload.MediaType,
		"size", formatting.FormatBytes(int64(len(payload.Data)), 1),
		"duration", time.Since(start),
	)
	return payload, nil
}

func (s *Service) generateConfig(tier Tier) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: s.cfg.AspectRatio,
			ImageSize:   tier.ImageSize(),
		},
	}
}

func extractImage(resp *genai.GenerateContentResponse) (*Payload, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		detail := "The AI did not provide a valid response. This might be due to safety filters."
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			detail = fmt.Sprintf("%s (blocked: %s)", detail, resp.PromptFeedback.BlockReason)
		}
		return nil, &Error{Kind: ErrNoImageReturned, Detail: detail}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mediaType := part.InlineData.MIMEType
			if mediaType == "" {
				mediaType = "image/png"
			}
			return &Payload{Data: part.InlineData.Data, MediaType: mediaType}, nil
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	detail := strings.TrimSpace(text.String())
	if detail == "" {
		detail = DefaultNoImageDetail
	}
	return nil, &Error{Kind: ErrNoImageReturned, Detail: detail}
}
