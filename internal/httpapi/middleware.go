package httpapi

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	PlayerCookie       = "cybercase_player"
	playerCookieMaxAge = 365 * 24 * 60 * 60
	maxLoggedBodyBytes = 256
)

type playerKey struct{}

// withPlayer makes sure every request carries a player id, issuing a cookie
// to first-time visitors.
func withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := ""
		if cookie, err := r.Cookie(PlayerCookie); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				playerID = parsed.String()
			}
		}
		if playerID == "" {
			playerID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     PlayerCookie,
				Value:    playerID,
				Path:     "/",
				MaxAge:   playerCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerKey{}, playerID)))
	})
}

func playerFromContext(ctx context.Context) string {
	playerID, _ := ctx.Value(playerKey{}).(string)
	return playerID
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	maxLogBytes  int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	written, err := r.ResponseWriter.Write(payload)
	r.bytesWritten += written

	remaining := r.maxLogBytes - r.logBody.Len()
	if remaining > 0 {
		chunk := payload[:written]
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
			r.truncated = true
		}
		r.logBody.Write(chunk)
	} else if written > 0 {
		r.truncated = true
	}
	return written, err
}

// logRequests logs one line per request. Error response bodies are included
// so failed calls can be diagnosed from the log alone.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBodyBytes,
		}

		next.ServeHTTP(recorder, r)

		duration := time.Since(started).Round(time.Microsecond)
		if recorder.statusCode < http.StatusBadRequest {
			log.Printf("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, duration)
			return
		}

		body := bytes.TrimSpace(recorder.logBody.Bytes())
		suffix := ""
		if recorder.truncated {
			suffix = "..."
		}
		log.Printf("%s %s -> %d (%s) body=%s%s", r.Method, r.URL.Path, recorder.statusCode, duration, body, suffix)
	})
}
