package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(cfg Config) *mux.Router {
	api := NewAPI(cfg)

	r := mux.NewRouter()
	r.Use(logRequests, withPlayer)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/phone", api.HandlePhone).Methods(http.MethodGet)
	r.HandleFunc("/messages", api.HandleMessages).Methods(http.MethodGet)
	r.HandleFunc("/mission_complete", api.HandleMissionComplete).Methods(http.MethodGet)
	r.HandleFunc("/validate", api.HandleValidate).Methods(http.MethodPost)
	r.HandleFunc("/validate_answer", api.HandleValidateAnswer).Methods(http.MethodPost)
	r.HandleFunc("/status", api.HandleStatus).Methods(http.MethodGet)

	r.HandleFunc("/quiz/start", api.HandleQuizStart).Methods(http.MethodPost)
	r.HandleFunc("/quiz/submit", api.HandleQuizSubmit).Methods(http.MethodPost)
	r.HandleFunc("/quiz/leaderboard", api.HandleLeaderboard).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return r
}
