package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		logg.Error(ctx, "request.error", err)
	}

	WriteJSON(w, meta.HTTPStatus, payload)
}

// WriteAskFailure reports an unanswered question with the status its error
// code maps to (200 for pipeline failures, 400 for bad input).
func WriteAskFailure(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	if typed := pkgerrors.As(err); typed != nil {
		status = pkgerrors.MetadataFor(typed.Code()).HTTPStatus
	}
	if logg != nil && status >= http.StatusInternalServerError {
		logg.Error(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "request.error", err)
	}
	WriteAsk(w, status, types.AskFailure{Success: false, Error: message})
}

// WriteAsk writes an ask payload. A payload that cannot be encoded is
// replaced by a success=false failure on a 500.
func WriteAsk(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload, types.AskFailure{
		Success: false,
		Error:   pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
	})
}

// WriteJSON writes payload; an unencodable payload becomes an INTERNAL_ERROR
// envelope on a 500.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload, types.ErrorEnvelope{Error: types.APIError{
		Code:    string(pkgerrors.CodeInternal),
		Message: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
	}})
}

// writeJSON encodes before writing the header so encode failures can still
// produce a well-formed response.
func writeJSON(w http.ResponseWriter, status int, payload, fallback any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(fallback)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
