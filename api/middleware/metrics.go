package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type httpObserver interface {
	Observe(method, route string, status int)
}

// Metrics counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func Metrics(obs httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			obs.Observe(r.Method, route, status)
		})
	}
}
