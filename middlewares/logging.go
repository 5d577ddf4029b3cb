package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"
)

// Logger writes one structured line per request.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			ev := log.Info()
			switch {
			case m.Code >= 500:
				ev = log.Error()
			case m.Code >= 400:
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", m.Code).
				Int64("bytes", m.Written).
				Dur("duration", m.Duration).
				Str("remote", clientIP(r)).
				Msg("request")
		})
	}
}

// RecoveryLogger routes panics caught by gorilla's RecoveryHandler into log.
type RecoveryLogger struct {
	Log zerolog.Logger
}

func (l RecoveryLogger) Println(v ...interface{}) {
	l.Log.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}
