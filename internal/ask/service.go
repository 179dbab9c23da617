package ask

import (
	"context"
	stdErrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/ecomagent-backend/internal/query"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	msgNoQuestion = "No question provided"
)

// Answer is a successfully answered question.
type Answer struct {
	Question    string           `json:"question"`
	Tier        string           `json:"tier"`
	Rule        string           `json:"rule"`
	SQL         string           `json:"sql_query"`
	Explanation string           `json:"explanation"`
	Results     []map[string]any `json:"results"`
	Text        string           `json:"formatted_response"`
	Cached      bool             `json:"cached,omitempty"`
}

type Options struct {
	MaxQuestionLen int
	// Dialect names the SQL flavour the model is asked to write.
	Dialect string
}

// Service routes questions through the keyword rules, then the model tier.
type Service struct {
	rules      []Rule
	runner     Runner
	translator *Translator
	formatter  *Formatter
	opts       Options
	logg       *logger.Logger
	metrics    *metrics.AskMetrics
}

func NewService(runner Runner, gen gemini.Generator, cache TranslationCache, opts Options, logg *logger.Logger, m *metrics.AskMetrics) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		rules:      DefaultRules(),
		runner:     runner,
		translator: NewTranslator(gen, cache, opts.Dialect, logg, m),
		formatter:  NewFormatter(gen, logg, m),
		opts:       opts,
		logg:       logg,
		metrics:    m,
	}
}

// Ask answers question. Errors are typed: VALIDATION_ERROR for bad input,
// MODEL_ERROR, QUERY_FAILED or QUERY_REJECTED for pipeline failures.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNoQuestion)
	}
	if s.opts.MaxQuestionLen > 0 && utf8.RuneCountInString(question) > s.opts.MaxQuestionLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is too long")
	}

	lowered := strings.ToLower(question)
	for _, rule := range s.rules {
		if !rule.Matches(lowered) {
			continue
		}
		results, text, ok := rule.Answer(ctx, s.runner)
		if !ok {
			s.logg.Warn(s.logg.WithTier(ctx, TierKeyword, rule.Name), "keyword rule produced no result; deferring to model")
			break
		}
		s.record(ctx, TierKeyword, rule.Name, nil)
		return &Answer{
			Question:    question,
			Tier:        TierKeyword,
			Rule:        rule.Name,
			SQL:         rule.SQL,
			Explanation: rule.Explanation,
			Results:     results,
			Text:        text,
		}, nil
	}

	answer, err := s.askModel(ctx, question)
	s.record(ctx, TierModel, RuleModel, err)
	return answer, err
}

func (s *Service) askModel(ctx context.Context, question string) (*Answer, error) {
	tr, cached, err := s.translator.Translate(ctx, question)
	if err != nil {
		return nil, err
	}

	res := s.runner.Execute(ctx, tr.SQL)
	if res.Err != nil {
		return nil, res.Err
	}
	if !cached {
		s.translator.Remember(ctx, question, tr)
	}

	rows := res.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	return &Answer{
		Question:    question,
		Tier:        TierModel,
		Rule:        RuleModel,
		SQL:         tr.SQL,
		Explanation: tr.Explanation,
		Results:     rows,
		Text:        s.formatter.Format(ctx, question, tr.SQL, rows),
		Cached:      cached,
	}, nil
}

func (s *Service) record(ctx context.Context, tier, rule string, err error) {
	ctx = s.logg.WithTier(ctx, tier, rule)
	if err != nil {
		s.metrics.IncRequest(tier, outcomeFailure)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "question not answered")
		return
	}
	s.metrics.IncRequest(tier, outcomeSuccess)
	s.logg.Info(ctx, "question answered")
}

// PublicMessage is the error text returned to callers for a failed question.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if stdErrors.Is(err, gemini.ErrNotConfigured) {
		return pkgerrors.MetadataFor(pkgerrors.CodeModel).PublicMessage
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage
	}
	if !pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		return pkgerrors.MetadataFor(typed.Code()).PublicMessage
	}
	return typed.Reason()
}

var _ Runner = (*query.Executor)(nil)
