package server

import (
	"net/http"

	"github.com/cvparse/resume-extractor/internal/common"
)

// handleExportHistory streams the user's extraction history as an XLSX
// workbook.
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := common.UserIDFromContext(ctx)

	data, err := s.exporter.HistoryXLSX(ctx, userID)
	if err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="resume-history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}
