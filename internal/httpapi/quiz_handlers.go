package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"cybercase/internal/bank"
	"cybercase/internal/missiondb"
)

const defaultLeaderboardLimit = 10

// HandleQuizStart deals a fresh question set, avoiding the player's previous
// one where the bank is large enough.
func (a *API) HandleQuizStart(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	var previous []int
	if a.store != nil {
		ids, err := a.store.LastQuestions(r.Context(), player)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		previous = ids
	}

	questions, err := a.bank.Pick(a.count, previous)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.sessions.Put(r.Context(), player, bank.IDs(questions)); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, startResponse{
		Questions: bank.ToPublic(questions),
		Timer:     a.timer,
	})
}

func (a *API) HandleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Answers == nil {
		request.Answers = map[string]int{}
	}

	player := playerFromContext(r.Context())
	ids, err := a.sessions.Take(r.Context(), player)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := a.bank.Score(ids, request.Answers)
	if a.store != nil {
		attempt := missiondb.Attempt{
			PlayerID:    player,
			Score:       result.Score,
			Total:       result.Total,
			Badge:       result.Badge,
			QuestionIDs: ids,
		}
		if err := a.store.RecordAttempt(r.Context(), attempt); err != nil {
			// Restore the dealt set so the player can resubmit.
			if putErr := a.sessions.Put(r.Context(), player, ids); putErr != nil {
				log.Printf("restore quiz for %s: %v", shortPlayerID(player), putErr)
			}
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLeaderboardLimit(r, defaultLeaderboardLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	response := leaderboardResponse{Leaderboard: make([]leaderboardEntryResponse, 0)}
	if a.store == nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	entries, err := a.store.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, entry := range entries {
		response.Leaderboard = append(response.Leaderboard, leaderboardEntryResponse{
			Player:        shortPlayerID(entry.PlayerID),
			Score:         entry.LastScore,
			Badge:         entry.LastBadge,
			LastAttemptAt: entry.LastAttemptAt,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// shortPlayerID keeps leaderboard rows readable without exposing full cookie
// values.
func shortPlayerID(playerID string) string {
	if len(playerID) > 8 {
		return playerID[:8]
	}
	return playerID
}
