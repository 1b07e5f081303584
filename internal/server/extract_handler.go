package server

import (
	"encoding/json"
	"net/http"
	"os"
)

// handleExtract is the stateless variant: no auth, no credits, nothing
// persisted. The normalized object is returned verbatim.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	upload, err := readUploadedFile(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := s.pipeline.Run(r.Context(), upload.Data)
	if err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := json.Marshal(result.Data)
	if err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// handleExtractInfo describes the endpoint for quick manual checks.
func (s *Server) handleExtractInfo(w http.ResponseWriter, _ *http.Request) {
	keyState := "not set"
	if os.Getenv("OPENAI_API_KEY") != "" {
		keyState = "set"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "PDF Resume Extractor API",
		"endpoint":    "/api/extract",
		"method":      "POST",
		"description": "Upload a PDF resume to extract structured data",
		"requiredFields": map[string]string{
			"file": "PDF file (multipart/form-data)",
		},
		"environmentVariables": map[string]string{
			"OPENAI_API_KEY": keyState,
		},
	})
}
