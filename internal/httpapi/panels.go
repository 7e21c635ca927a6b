package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed panels/*.html
var panelFiles embed.FS

var (
	phonePanel    = mustReadPanel("panels/phone.html")
	messagesPanel = mustReadPanel("panels/messages.html")
	completeTmpl  = template.Must(template.ParseFS(panelFiles, "panels/mission_complete.html"))
)

func mustReadPanel(name string) []byte {
	data, err := panelFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

func writeHTML(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func (a *API) HandlePhone(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, phonePanel)
}

func (a *API) HandleMessages(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, messagesPanel)
}

func (a *API) HandleMissionComplete(w http.ResponseWriter, r *http.Request) {
	status, err := a.missionStatus(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := completeTmpl.Execute(&buf, status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}
