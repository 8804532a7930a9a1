package controller

import (
	"errors"
	"mapslinks/pkg/logger"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// WithRecovery returns a middleware that logs a handler panic with its stack
// and answers 500 instead of dropping the connection. http.ErrAbortHandler
// is re-raised so net/http can abort the response as intended.
func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}

			logger.Error(r.Context(), "captured panic in http handler",
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
