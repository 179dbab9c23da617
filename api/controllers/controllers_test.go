package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/ecomagent-backend/internal/ask"
	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
)

type stubAskService struct {
	answer   *ask.Answer
	err      error
	question string
	calls    int
}

func (s *stubAskService) Ask(ctx context.Context, question string) (*ask.Answer, error) {
	s.calls++
	s.question = question
	return s.answer, s.err
}

type askPayload struct {
	Success           bool             `json:"success"`
	Question          string           `json:"question"`
	SQLQuery          string           `json:"sql_query"`
	Explanation       string           `json:"explanation"`
	Results           []map[string]any `json:"results"`
	FormattedResponse string           `json:"formatted_response"`
	Error             string           `json:"error"`
}

func postAsk(t *testing.T, svc AskService, body string) (*httptest.ResponseRecorder, askPayload) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	Ask(svc, logger.Nop()).ServeHTTP(rec, req)

	var payload askPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return rec, payload
}

func TestAskSuccess(t *testing.T) {
	svc := &stubAskService{answer: &ask.Answer{
		Question:    "What is my total sales?",
		Tier:        ask.TierKeyword,
		SQL:         "SELECT SUM(total_sales) AS total_sales FROM total_sales_metrics",
		Explanation: "Calculate total sales from all records",
		Results:     []map[string]any{{"total_sales": 350.0}},
		Text:        "Your total sales are 350.00 from 1 records loaded from Excel files.",
	}}

	rec, payload := postAsk(t, svc, `{"question":"What is my total sales?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !payload.Success || !strings.Contains(payload.FormattedResponse, "350.00") {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.SQLQuery == "" || payload.Explanation == "" || len(payload.Results) != 1 {
		t.Fatalf("expected sql, explanation and results, got %+v", payload)
	}
	if svc.question != "What is my total sales?" {
		t.Fatalf("unexpected question forwarded: %q", svc.question)
	}
}

func TestAskMissingQuestion(t *testing.T) {
	for _, body := range []string{"", "{}", `{"question":""}`, `{"other":"x"}`} {
		svc := &stubAskService{}
		rec, payload := postAsk(t, svc, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if payload.Success || payload.Error != "No question provided" {
			t.Fatalf("body %q: unexpected payload %+v", body, payload)
		}
		if svc.calls != 0 {
			t.Fatalf("body %q: service should not be called", body)
		}
	}
}

func TestAskMalformedBody(t *testing.T) {
	svc := &stubAskService{}
	rec, payload := postAsk(t, svc, `{"question":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payload.Success || payload.Error == "" {
		t.Fatalf("expected failure payload, got %+v", payload)
	}
}

func TestAskPipelineFailureIsReportedOn200(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"model parse": {
			err:  pkgerrors.Wrap(pkgerrors.CodeModel, errors.New("invalid character 'n'"), "could not parse model reply"),
			want: "could not parse model reply: invalid character 'n'",
		},
		"query failed": {
			err:  pkgerrors.Wrap(pkgerrors.CodeQueryFailed, errors.New("no such table: nope"), "query failed"),
			want: "query failed: no such table: nope",
		},
		"not configured": {
			err:  pkgerrors.Wrap(pkgerrors.CodeModel, gemini.ErrNotConfigured, "model unavailable"),
			want: pkgerrors.MetadataFor(pkgerrors.CodeModel).PublicMessage,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, payload := postAsk(t, &stubAskService{err: tc.err}, `{"question":"top products by units"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if payload.Success || payload.Error != tc.want {
				t.Fatalf("unexpected payload %+v", payload)
			}
		})
	}
}

func TestAskUnexpectedErrorIsInternal(t *testing.T) {
	rec, payload := postAsk(t, &stubAskService{err: errors.New("boom")}, `{"question":"anything"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if payload.Success || payload.Error != "internal server error" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestAskUnencodableAnswerIsInternal(t *testing.T) {
	svc := &stubAskService{answer: &ask.Answer{
		Question: "overflow",
		Results:  []map[string]any{{"x": math.Inf(1)}},
	}}
	rec, payload := postAsk(t, svc, `{"question":"overflow"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if payload.Success || payload.Error != "internal server error" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

type stubCounter struct {
	n   int64
	err error
}

func (s stubCounter) CountSales(context.Context) (int64, error) {
	return s.n, s.err
}

func TestIndexRendersRecordCount(t *testing.T) {
	rec := httptest.NewRecorder()
	Index(stubCounter{n: 42}, 0, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Database: 42 records loaded") {
		t.Fatalf("record count missing from page")
	}
	if !strings.Contains(body, "Calculate the RoAS") {
		t.Fatalf("examples missing from page")
	}
}

func TestIndexStoreFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	Index(stubCounter{err: errors.New("db down")}, 0, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	t.Run("database only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(cfg, logger.Nop(), stubPinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"redis":"disabled"`) {
			t.Fatalf("expected redis disabled, got %s", rec.Body.String())
		}
		if rec.Header().Get(envHeader) != "test" {
			t.Fatalf("missing env header")
		}
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(cfg, logger.Nop(), stubPinger{err: errors.New("down")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("redis down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(cfg, logger.Nop(), stubPinger{}, stubPinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(&config.Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"live"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
