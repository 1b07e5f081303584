package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/entity"
)

// uploadedFile is the multipart payload after validation.
type uploadedFile struct {
	Data     []byte
	Name     string
	Size     int
	MIMEType string
}

// readUploadedFile parses the "file" multipart field under the upload size
// cap. A nil result with a nil error never happens: either the file is
// returned or the caller gets a client-facing error.
func readUploadedFile(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	if r.ContentLength > constants.MaxUploadBytes {
		return nil, common.NewAppError("FILE_TOO_LARGE", "File size exceeds 5MB limit", common.ErrInvalidInput)
	}
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)

	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return nil, common.NewAppError("FILE_TOO_LARGE", "File size exceeds 5MB limit", common.ErrInvalidInput)
		}
		return nil, common.NewAppError("BAD_FORM", "Invalid form data", common.ErrInvalidInput)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, common.NewAppError("NO_FILE", "No file uploaded", common.ErrInvalidInput)
	}
	defer func(f multipart.File) {
		_ = f.Close()
	}(file)

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes+1))
	if err != nil {
		return nil, common.NewAppError("READ_FAILED", "Failed to read file", common.ErrInternal)
	}
	if len(data) == 0 {
		return nil, common.NewAppError("EMPTY_FILE", "Uploaded file is empty", common.ErrInvalidInput)
	}
	if len(data) > constants.MaxUploadBytes {
		return nil, common.NewAppError("FILE_TOO_LARGE", "File size exceeds 5MB limit", common.ErrInvalidInput)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return &uploadedFile{
		Data:     data,
		Name:     header.Filename,
		Size:     int(header.Size),
		MIMEType: mimeType,
	}, nil
}

// handleUpload is the full credit-gated flow: auth (middleware) → credit
// gate → file record → pipeline → persist → decrement → respond. The credit
// gate runs before any PDF processing or file record creation.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		respondErrorMessage(w, http.StatusNotFound, "User not found")
		return
	}

	if user.Credits < constants.CreditsPerFile {
		upgrade := "Please top up your credits or wait for your subscription to renew."
		if user.PlanType == constants.PlanFree {
			upgrade = "Please subscribe to a plan to get more credits, or wait for your subscription to renew."
		}
		respondJSON(w, http.StatusPaymentRequired, map[string]any{
			"error": "Insufficient credits",
			"message": fmt.Sprintf("You need %d credits to process a file. You have %d credits remaining. %s",
				constants.CreditsPerFile, user.Credits, upgrade),
			"creditsRemaining": user.Credits,
			"creditsRequired":  constants.CreditsPerFile,
		})
		return
	}

	upload, err := readUploadedFile(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	fileRec, err := s.files.Create(ctx, user.ID, upload.Name, upload.Size, upload.MIMEType)
	if err != nil {
		respondErrorMessage(w, http.StatusInternalServerError, "Failed to create file record")
		return
	}
	_ = s.history.Append(ctx, user.ID, fileRec.ID, constants.ActionUpload, constants.HistoryStatusSuccess, "File uploaded successfully")

	result, err := s.pipeline.Run(ctx, upload.Data)
	if err != nil {
		s.failFile(r, fileRec, err)
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	normalized, err := json.Marshal(result.Data)
	if err != nil {
		s.failFile(r, fileRec, err)
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := s.resumes.Create(ctx, user.ID, fileRec.ID, normalized); err != nil {
		s.failFile(r, fileRec, err)
		respondErrorMessage(w, http.StatusInternalServerError, "Failed to store resume data")
		return
	}

	if err := s.files.SetStatus(ctx, fileRec.ID, constants.FileStatusCompleted); err != nil {
		s.logger.Error("failed to mark file completed", "file_id", fileRec.ID, "error", err)
	}
	if err := s.users.DecrementCredits(ctx, user.ID, constants.CreditsPerFile); err != nil {
		// The gate passed earlier; losing the race here is bookkeeping noise,
		// not a reason to withhold a finished extraction.
		s.logger.Error("failed to decrement credits", "user_id", user.ID, "error", err)
	}
	_ = s.history.Append(ctx, user.ID, fileRec.ID, constants.ActionExtract, constants.HistoryStatusSuccess, "Resume data extracted successfully")

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file": map[string]any{
			"id":       fileRec.ID,
			"fileName": fileRec.FileName,
			"fileSize": fileRec.FileSize,
			"status":   constants.FileStatusCompleted,
		},
		"resumeData": json.RawMessage(normalized),
	})
}

// failFile records a processing failure on the tracking record and the
// history log; partial progress is recorded, not silently dropped.
func (s *Server) failFile(r *http.Request, fileRec *entity.File, cause error) {
	ctx := r.Context()
	if err := s.files.SetStatus(ctx, fileRec.ID, constants.FileStatusFailed); err != nil {
		s.logger.Error("failed to mark file failed", "file_id", fileRec.ID, "error", err)
	}
	_ = s.history.Append(ctx, fileRec.UserID, fileRec.ID, constants.ActionExtract, constants.HistoryStatusFailed, cause.Error())
}
