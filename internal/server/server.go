package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cvparse/resume-extractor/internal/billing"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/export"
	"github.com/cvparse/resume-extractor/internal/pipeline"
	"github.com/cvparse/resume-extractor/internal/repository"
)

// Server wires the HTTP surface: the authenticated upload/extract flow, the
// stateless extract endpoint, file access, history export, and the billing
// webhook. All collaborators are injected; nothing here is a singleton.
type Server struct {
	pipeline *pipeline.Pipeline
	users    repository.UserRepository
	files    repository.FileRepository
	resumes  repository.ResumeRepository
	history  repository.HistoryRepository
	ledger   *billing.Ledger
	exporter *export.Service
	billing  common.BillingConfig
	logger   *slog.Logger
}

func New(
	p *pipeline.Pipeline,
	users repository.UserRepository,
	files repository.FileRepository,
	resumes repository.ResumeRepository,
	history repository.HistoryRepository,
	ledger *billing.Ledger,
	exporter *export.Service,
	billingCfg common.BillingConfig,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: p,
		users:    users,
		files:    files,
		resumes:  resumes,
		history:  history,
		ledger:   ledger,
		exporter: exporter,
		billing:  billingCfg,
		logger:   logger,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))

	// Stateless extraction (no auth, no credits, no persistence).
	r.HandleFunc("/api/extract", s.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/api/extract", s.handleExtractInfo).Methods(http.MethodGet)

	// Billing webhook authenticates by signature, not by session.
	r.HandleFunc("/api/webhooks/billing", s.handleBillingWebhook).Methods(http.MethodPost)

	// Authenticated surface.
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/files/upload", s.handleUpload).Methods(http.MethodPost)
	authed.HandleFunc("/files/{id}", s.handleGetFile).Methods(http.MethodGet)
	authed.HandleFunc("/files/{id}", s.handleDeleteFile).Methods(http.MethodDelete)
	authed.HandleFunc("/exports/history", s.handleExportHistory).Methods(http.MethodGet)

	return r
}
