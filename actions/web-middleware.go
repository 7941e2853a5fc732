package actions

import (
	"context"
	"net/http"

	"github.com/relloyd/ctadmin/logger"
	"github.com/rs/xid"
)

const headerRequestId = "X-Request-Id"

type ctxKey int

const ctxKeyLogger ctxKey = iota

// requestIdMiddleware tags each request with an id that is echoed in the response headers and added to the
// request's logger. A request id supplied by the caller is kept.
func requestIdMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestId)
			if id == "" {
				id = xid.New().String()
			}
			w.Header().Set(headerRequestId, id)
			l := log.WithFields(map[string]interface{}{"requestId": id, "method": r.Method, "path": r.URL.Path})
			l.Debug("request received")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyLogger, l)))
		})
	}
}

// requestLogger returns the logger added by requestIdMiddleware, or log if there isn't one.
func requestLogger(r *http.Request, log logger.Logger) logger.Logger {
	if l, ok := r.Context().Value(ctxKeyLogger).(logger.Logger); ok {
		return l
	}
	return log
}
