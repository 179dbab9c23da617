package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"google.golang.org/genai"
)

// ErrNotConfigured is the cause of every call made without an API key.
var ErrNotConfigured = errors.New("gemini api key not configured")

// Generator turns a prompt into a text completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls the Gemini API. A Client built without an API key still
// satisfies Generator but fails every call with MODEL_ERROR.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// New builds a client from config. A missing key is logged, not returned.
func New(ctx context.Context, cfg config.GenAIConfig, logg *logger.Logger) (*Client, error) {
	c := &Client{model: cfg.Model, timeout: cfg.Timeout}
	if strings.TrimSpace(cfg.APIKey) == "" {
		if logg != nil {
			logg.Warn(ctx, "gemini api key not configured; only keyword questions will be answered")
		}
		return c, nil
	}

	raw, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gemini client")
	}
	c.models = raw.Models
	if logg != nil {
		logg.Info(logg.WithField(ctx, "model", cfg.Model), "gemini client configured")
	}
	return c, nil
}

func newWithModels(models contentGenerator, model string, timeout time.Duration) *Client {
	return &Client{models: models, model: model, timeout: timeout}
}

// Generate sends prompt as a single user turn and returns the trimmed reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeModel, ErrNotConfigured, "model unavailable")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeModel, err, "gemini generate content")
	}
	if resp == nil {
		return "", pkgerrors.New(pkgerrors.CodeModel, "gemini returned no response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", pkgerrors.New(pkgerrors.CodeModel, "gemini returned an empty reply")
	}
	return text, nil
}
