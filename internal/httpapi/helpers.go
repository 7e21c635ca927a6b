package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"cybercase/internal/bank"
	"cybercase/internal/missiondb"
	"cybercase/internal/quizsessions"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizsessions.ErrNoActiveQuiz):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no active quiz"})
	case errors.Is(err, bank.ErrEmptyBank):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "question bank is empty"})
	case errors.Is(err, missiondb.ErrPlayerRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player cookie is required"})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// decodeAnswer accepts a JSON body or a classic form post.
func decodeAnswer(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return strings.TrimSpace(r.PostForm.Get("answer")), nil
	}

	var request answerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return "", err
	}
	return strings.TrimSpace(request.Answer), nil
}

func parseLeaderboardLimit(r *http.Request, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("limit"))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
