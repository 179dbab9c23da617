package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ecomagent-backend/api/responses"
	"github.com/angelmondragon/ecomagent-backend/api/validators"
	"github.com/angelmondragon/ecomagent-backend/internal/ask"
	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/types"
)

const msgNoQuestion = "No question provided"

// AskService answers a single natural-language question.
type AskService interface {
	Ask(ctx context.Context, question string) (*ask.Answer, error)
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
}

// Ask handles POST /api/ask.
func Ask(svc AskService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "ask service unavailable")
			responses.WriteAskFailure(ctx, logg, w, err, pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage)
			return
		}

		var payload askRequest
		if err := validators.DecodeJSONBody(r, &payload, validators.AllowUnknownFields()); err != nil {
			if _, missing := validators.FieldError(err, "question"); missing {
				responses.WriteAskFailure(ctx, logg, w, err, msgNoQuestion)
				return
			}
			responses.WriteAskFailure(ctx, logg, w, err, "Invalid request body")
			return
		}

		answer, err := svc.Ask(ctx, payload.Question)
		if err != nil {
			responses.WriteAskFailure(ctx, logg, w, err, ask.PublicMessage(err))
			return
		}

		responses.WriteAsk(w, http.StatusOK, types.AskResponse{
			Success:           true,
			Question:          answer.Question,
			SQLQuery:          answer.SQL,
			Explanation:       answer.Explanation,
			Results:           answer.Results,
			FormattedResponse: answer.Text,
		})
	}
}
