package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// New builds a JSON production logger at the given level ("debug", "info", ...).
func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// RequestLog writes one line per request once the handler has returned.
func RequestLog(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		startedAt := time.Now()
		next.ServeHTTP(rw, r)

		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Int("bytes", rw.length),
			zap.Duration("duration", time.Since(startedAt)),
			zap.String("request_id", r.Header.Get(RequestIDHeader)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	length int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.length += n
	return n, err
}
