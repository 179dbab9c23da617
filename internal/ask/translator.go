package ask

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
)

const (
	callTranslate = "translate"
	callFormat    = "format"
)

// Translation is the model's answer to "which SQL answers this question".
type Translation struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
}

type translationReply struct {
	SQL         *string `json:"sql"`
	Explanation string  `json:"explanation"`
}

// Translator asks the model for SQL, caching successful translations.
type Translator struct {
	gen     gemini.Generator
	cache   TranslationCache
	dialect string
	logg    *logger.Logger
	metrics *metrics.AskMetrics
}

func NewTranslator(gen gemini.Generator, cache TranslationCache, dialect string, logg *logger.Logger, m *metrics.AskMetrics) *Translator {
	if cache == nil {
		cache = noopCache{}
	}
	if dialect == "" {
		dialect = "SQLite"
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Translator{gen: gen, cache: cache, dialect: dialect, logg: logg, metrics: m}
}

// Translate returns SQL for question or a MODEL_ERROR describing why none
// could be produced.
func (t *Translator) Translate(ctx context.Context, question string) (Translation, bool, error) {
	if cached, ok := t.cache.Get(ctx, question); ok {
		return cached, true, nil
	}

	start := time.Now()
	reply, err := t.gen.Generate(ctx, buildTranslatePrompt(t.dialect, question))
	t.metrics.ObserveModelCall(callTranslate, time.Since(start), err)
	if err != nil {
		return Translation{}, false, err
	}

	tr, err := ParseTranslation(reply)
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "reply", truncate(reply, 500)), "model reply could not be used")
		return Translation{}, false, err
	}

	return tr, false, nil
}

// Remember caches a translation whose SQL has run successfully.
func (t *Translator) Remember(ctx context.Context, question string, tr Translation) {
	t.cache.Put(ctx, question, tr)
}

// ParseTranslation pulls the JSON payload out of a free-text model reply: the
// first ```json fence, else the first ``` fence, else the whole reply.
func ParseTranslation(reply string) (Translation, error) {
	payload := extractPayload(reply)

	var parsed translationReply
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return Translation{}, pkgerrors.Wrap(pkgerrors.CodeModel, err, "could not parse model reply")
	}
	if parsed.SQL == nil || strings.TrimSpace(*parsed.SQL) == "" {
		msg := strings.TrimSpace(parsed.Explanation)
		if msg == "" {
			msg = "Could not generate SQL"
		}
		return Translation{}, pkgerrors.New(pkgerrors.CodeModel, msg)
	}
	return Translation{SQL: strings.TrimSpace(*parsed.SQL), Explanation: parsed.Explanation}, nil
}

func extractPayload(reply string) string {
	text := strings.TrimSpace(reply)
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		body := text[start+len(fence):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
