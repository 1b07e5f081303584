package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cvparse/resume-extractor/internal/common"
)

// handleGetFile returns one file record with its resume data. Lookups are
// scoped to the authenticated user: someone else's file is a 404, not a 403,
// so IDs are not probeable.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := common.UserIDFromContext(ctx)

	fileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid file ID")
		return
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil || file.UserID != userID {
		respondErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}

	var resumeData json.RawMessage
	if rec, err := s.resumes.GetByFileID(ctx, fileID); err == nil {
		resumeData = json.RawMessage(rec.Data)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file": map[string]any{
			"id":         file.ID,
			"fileName":   file.FileName,
			"fileSize":   file.FileSize,
			"status":     file.Status,
			"uploadedAt": file.CreatedAt.UTC().Format(time.RFC3339),
			"resumeData": resumeData,
		},
	})
}

// handleDeleteFile removes the file record and everything hanging off it.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := common.UserIDFromContext(ctx)

	fileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid file ID")
		return
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil || file.UserID != userID {
		respondErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}

	if err := s.resumes.DeleteByFileID(ctx, fileID); err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, "Failed to delete resume data")
		return
	}
	if err := s.history.DeleteByFileID(ctx, fileID); err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, "Failed to delete history")
		return
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "File deleted successfully",
	})
}
