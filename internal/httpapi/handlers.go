package httpapi

import (
	"net/http"
	"strings"

	"cybercase/internal/missiondb"
)

const (
	verdictCorrect   = "correct"
	verdictIncorrect = "incorrect"

	clearedScore     = 100
	completeRedirect = "/mission_complete"
	correctMessage   = "Mission complete! You found the owner."
	incorrectMessage = "Incorrect. Hint: decode the Base64 in messages."
)

// HandleValidate checks the mission answer and, on success, tells the client
// where to go next.
func (a *API) HandleValidate(w http.ResponseWriter, r *http.Request) {
	correct, ok := a.checkOwner(w, r)
	if !ok {
		return
	}
	if !correct {
		writeJSON(w, http.StatusOK, validateResponse{Result: verdictIncorrect, Message: incorrectMessage})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Result:   verdictCorrect,
		Message:  correctMessage,
		Redirect: completeRedirect,
	})
}

func (a *API) HandleValidateAnswer(w http.ResponseWriter, r *http.Request) {
	correct, ok := a.checkOwner(w, r)
	if !ok {
		return
	}
	status := verdictIncorrect
	if correct {
		status = verdictCorrect
	}
	writeJSON(w, http.StatusOK, validateAnswerResponse{Status: status})
}

func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.missionStatus(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response := statusResponse{Status: status.Status, Score: status.Score}
	if a.store != nil {
		attempts, err := a.store.AttemptCount(r.Context(), playerFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Attempts = attempts
	}
	writeJSON(w, http.StatusOK, response)
}

// checkOwner compares the posted answer with the owner's name and records a
// cleared mission. ok is false once an error response has been written.
func (a *API) checkOwner(w http.ResponseWriter, r *http.Request) (correct bool, ok bool) {
	defer r.Body.Close()

	answer, err := decodeAnswer(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false, false
	}
	if answer == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "answer is required"})
		return false, false
	}
	if strings.ToLower(answer) != a.ownerName {
		return false, true
	}

	if a.store != nil {
		if err := a.store.MarkCleared(r.Context(), playerFromContext(r.Context()), clearedScore); err != nil {
			writeServiceError(w, err)
			return false, false
		}
	}
	return true, true
}

func (a *API) missionStatus(r *http.Request) (missiondb.MissionStatus, error) {
	if a.store == nil {
		return missiondb.MissionStatus{Status: missiondb.StatusNotCleared}, nil
	}
	return a.store.MissionStatus(r.Context(), playerFromContext(r.Context()))
}
