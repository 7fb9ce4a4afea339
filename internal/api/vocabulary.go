package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// VocabularyHandler edits the phrase list. Every response carries the full
// current list so the panel never drifts from the store.
type VocabularyHandler struct {
	store VocabStore
}

func NewVocabularyHandler(store VocabStore) *VocabularyHandler {
	return &VocabularyHandler{store: store}
}

type vocabularyResponse struct {
	Phrases []string `json:"phrases"`
	Changed bool     `json:"changed,omitempty"`
}

type phraseRequest struct {
	Phrase string `json:"phrase"`
}

func (h *VocabularyHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vocabularyResponse{Phrases: h.store.Snapshot()})
}

func (h *VocabularyHandler) Add(w http.ResponseWriter, r *http.Request) {
	phrase, ok := readPhrase(w, r)
	if !ok {
		return
	}
	changed := h.store.Add(phrase)
	writeJSON(w, http.StatusOK, vocabularyResponse{Phrases: h.store.Snapshot(), Changed: changed})
}

func (h *VocabularyHandler) Remove(w http.ResponseWriter, r *http.Request) {
	phrase := strings.TrimSpace(r.URL.Query().Get("phrase"))
	if phrase == "" {
		var ok bool
		phrase, ok = readPhrase(w, r)
		if !ok {
			return
		}
	}
	changed := h.store.Remove(phrase)
	status := http.StatusOK
	if !changed {
		status = http.StatusNotFound
	}
	writeJSON(w, status, vocabularyResponse{Phrases: h.store.Snapshot(), Changed: changed})
}

func readPhrase(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req phraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return "", false
	}
	phrase := strings.TrimSpace(req.Phrase)
	if phrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phrase must not be empty"})
		return "", false
	}
	return phrase, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
