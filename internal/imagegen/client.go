package imagegen

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// KeySource supplies the API key for the next request. The key may change
// between calls when a new credential is selected.
type KeySource interface {
	APIKey() string
}

// ClientPool lazily creates one genai client per distinct API key.
type ClientPool struct {
	keys    KeySource
	baseURL string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewClientPool creates a pool that resolves keys from keys. A non-empty
// baseURL overrides the Gemini API endpoint.
func NewClientPool(keys KeySource, baseURL string) *ClientPool {
	return &ClientPool{
		keys:    keys,
		baseURL: baseURL,
		clients: make(map[string]*genai.Client),
	}
}

// Client returns the client for the currently active key. A missing key is
// reported as ErrCredentialRequired.
func (p *ClientPool) Client(ctx context.Context) (*genai.Client, error) {
	key := p.keys.APIKey()
	if key == "" {
		return nil, &Error{Kind: ErrCredentialRequired, Detail: "no API key selected"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[key]; ok {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	p.clients[key] = c
	return c, nil
}
