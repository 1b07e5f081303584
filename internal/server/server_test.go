package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/billing"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/entity"
	"github.com/cvparse/resume-extractor/internal/export"
	"github.com/cvparse/resume-extractor/internal/llm"
	"github.com/cvparse/resume-extractor/internal/pipeline"
	"github.com/cvparse/resume-extractor/internal/resume"
)

// In-memory repositories backing handler tests.

type memUsers struct {
	byID map[uuid.UUID]*entity.User
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) GetByAPIToken(_ context.Context, token string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.APIToken == token {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) GetBySubscriptionID(_ context.Context, sub string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.SubscriptionID != nil && *u.SubscriptionID == sub {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) DecrementCredits(_ context.Context, id uuid.UUID, amount int) error {
	u, ok := m.byID[id]
	if !ok || u.Credits < amount {
		return common.ErrInsufficientCredits
	}
	u.Credits -= amount
	return nil
}

func (m *memUsers) AddCredits(_ context.Context, id uuid.UUID, amount int, plan constants.PlanType) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Credits += amount
	if plan != "" {
		u.PlanType = plan
	}
	return nil
}

func (m *memUsers) SetSubscription(_ context.Context, id uuid.UUID, sub string, plan constants.PlanType) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.SubscriptionID = &sub
	u.PlanType = plan
	return nil
}

func (m *memUsers) SetPlan(_ context.Context, id uuid.UUID, plan constants.PlanType) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PlanType = plan
	return nil
}

func (m *memUsers) ClearSubscription(_ context.Context, id uuid.UUID) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.SubscriptionID = nil
	u.PlanType = constants.PlanFree
	return nil
}

type memFiles struct {
	byID map[uuid.UUID]*entity.File
}

func (m *memFiles) GetByID(_ context.Context, id uuid.UUID) (*entity.File, error) {
	if f, ok := m.byID[id]; ok {
		return f, nil
	}
	return nil, common.ErrNotFound
}

func (m *memFiles) Create(_ context.Context, userID uuid.UUID, name string, size int, fileType string) (*entity.File, error) {
	f := &entity.File{
		ID:        uuid.New(),
		UserID:    userID,
		FileName:  name,
		FileSize:  size,
		FileType:  fileType,
		Status:    constants.FileStatusProcessing,
		CreatedAt: time.Now(),
	}
	m.byID[f.ID] = f
	return f, nil
}

func (m *memFiles) SetStatus(_ context.Context, id uuid.UUID, status constants.FileStatus) error {
	f, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	f.Status = status
	return nil
}

func (m *memFiles) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

type memResumes struct {
	byFileID map[uuid.UUID]*entity.ResumeRecord
}

func (m *memResumes) Create(_ context.Context, userID, fileID uuid.UUID, data []byte) (*entity.ResumeRecord, error) {
	rec := &entity.ResumeRecord{ID: uuid.New(), UserID: userID, FileID: fileID, Data: data}
	m.byFileID[fileID] = rec
	return rec, nil
}

func (m *memResumes) GetByFileID(_ context.Context, fileID uuid.UUID) (*entity.ResumeRecord, error) {
	if rec, ok := m.byFileID[fileID]; ok {
		return rec, nil
	}
	return nil, common.ErrNotFound
}

func (m *memResumes) DeleteByFileID(_ context.Context, fileID uuid.UUID) error {
	delete(m.byFileID, fileID)
	return nil
}

type memHistory struct {
	entries []entity.HistoryEntry
}

func (m *memHistory) Append(_ context.Context, userID, fileID uuid.UUID, action constants.HistoryAction, status constants.HistoryStatus, message string) error {
	m.entries = append(m.entries, entity.HistoryEntry{
		ID: uuid.New(), UserID: userID, FileID: fileID,
		Action: action, Status: status, Message: message, CreatedAt: time.Now(),
	})
	return nil
}

func (m *memHistory) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error) {
	var out []entity.HistoryEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistory) DeleteByFileID(_ context.Context, fileID uuid.UUID) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.FileID != fileID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// Pipeline collaborators.

type stubText struct{ text string }

func (s *stubText) Text(context.Context, []byte) string { return s.text }

type stubRaster struct{ err error }

func (s *stubRaster) FirstPageDataURL(context.Context, []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "data:image/png;base64,AAAA", nil
}

type stubExtractor struct {
	result llm.Result
	err    error
}

func (s *stubExtractor) ExtractFields(context.Context, llm.ExtractRequest) (llm.Result, error) {
	return s.result, s.err
}

type fixture struct {
	server    *Server
	users     *memUsers
	files     *memFiles
	resumes   *memResumes
	history   *memHistory
	extractor *stubExtractor
	billing   common.BillingConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &memUsers{byID: map[uuid.UUID]*entity.User{}}
	files := &memFiles{byID: map[uuid.UUID]*entity.File{}}
	resumes := &memResumes{byFileID: map[uuid.UUID]*entity.ResumeRecord{}}
	history := &memHistory{}

	raw := `{"profile":{"name":"Ada","surname":"Lovelace"}}`
	extractor := &stubExtractor{result: llm.Result{
		Data:    resume.Normalize([]byte(raw)),
		RawJSON: []byte(raw),
		Model:   "gpt-4o-mini",
	}}

	p := pipeline.New(pipeline.Config{},
		&stubText{text: strings.Repeat("resume text ", 10)},
		&stubRaster{}, extractor, nil)

	billingCfg := common.BillingConfig{
		WebhookSecret: "whsec_test",
		PriceIDBasic:  "price_basic",
		PriceIDPro:    "price_pro",
	}
	ledger := billing.NewLedger(users, billingCfg, nil)
	exporter := export.NewService(history, nil)

	srv := New(p, users, files, resumes, history, ledger, exporter, billingCfg, nil)
	return &fixture{
		server:    srv,
		users:     users,
		files:     files,
		resumes:   resumes,
		history:   history,
		extractor: extractor,
		billing:   billingCfg,
	}
}

func (f *fixture) addUser(credits int, plan constants.PlanType) *entity.User {
	u := &entity.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		APIToken: "tok_" + uuid.NewString(),
		Credits:  credits,
		PlanType: plan,
	}
	f.users.byID[u.ID] = u
	return u
}

func multipartPDF(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestExtractStateless(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartPDF(t, "file", "resume.pdf", []byte("%PDF-1.4 fake"))

	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"profile"`), "profile must serialize first: %s", rec.Body.String())

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out, "workExperiences")
	assert.Contains(t, out, "honors")
	assert.Empty(t, f.files.byID, "stateless endpoint must not persist")
}

func TestExtractMissingFile(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractInfo(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/extract", nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "/api/extract", out["endpoint"])
}

func TestUploadRequiresAuth(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartPDF(t, "file", "resume.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/files/upload", nil)
	req.Header.Set("Authorization", "Bearer tok_wrong")
	rec = httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadInsufficientCredits(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(constants.CreditsPerFile-1, constants.PlanFree)
	body, contentType := multipartPDF(t, "file", "resume.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+user.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Insufficient credits", out["error"])
	assert.Equal(t, float64(constants.CreditsPerFile-1), out["creditsRemaining"])
	assert.Equal(t, float64(constants.CreditsPerFile), out["creditsRequired"])
	assert.Contains(t, out["message"], "subscribe to a plan")

	assert.Empty(t, f.files.byID, "the gate runs before any file record exists")
	assert.Empty(t, f.history.entries)
}

func TestUploadHappyPath(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(1000, constants.PlanFree)
	body, contentType := multipartPDF(t, "file", "resume.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+user.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Success bool `json:"success"`
		File    struct {
			ID       uuid.UUID `json:"id"`
			FileName string    `json:"fileName"`
			Status   string    `json:"status"`
		} `json:"file"`
		ResumeData json.RawMessage `json:"resumeData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "resume.pdf", out.File.FileName)
	assert.Equal(t, "completed", out.File.Status)
	assert.Contains(t, string(out.ResumeData), `"name":"Ada"`)

	assert.Equal(t, 1000-constants.CreditsPerFile, user.Credits)

	stored, ok := f.files.byID[out.File.ID]
	require.True(t, ok)
	assert.Equal(t, constants.FileStatusCompleted, stored.Status)

	rec2, err := f.resumes.GetByFileID(context.Background(), out.File.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(out.ResumeData), string(rec2.Data))

	require.Len(t, f.history.entries, 2)
	assert.Equal(t, constants.ActionUpload, f.history.entries[0].Action)
	assert.Equal(t, constants.ActionExtract, f.history.entries[1].Action)
	assert.Equal(t, constants.HistoryStatusSuccess, f.history.entries[1].Status)
}

func TestUploadPipelineFailure(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = errors.New("completion status 500: upstream down")
	user := f.addUser(1000, constants.PlanFree)
	body, contentType := multipartPDF(t, "file", "resume.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+user.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1000, user.Credits, "no charge for a failed extraction")

	require.Len(t, f.files.byID, 1)
	for _, stored := range f.files.byID {
		assert.Equal(t, constants.FileStatusFailed, stored.Status)
	}
	require.Len(t, f.history.entries, 2)
	assert.Equal(t, constants.HistoryStatusFailed, f.history.entries[1].Status)
}

func TestGetFile(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(1000, constants.PlanFree)
	other := f.addUser(1000, constants.PlanFree)

	file, err := f.files.Create(context.Background(), owner.ID, "resume.pdf", 42, "application/pdf")
	require.NoError(t, err)
	_, err = f.resumes.Create(context.Background(), owner.ID, file.ID, []byte(`{"workExperiences":[]}`))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+owner.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		File struct {
			FileName   string          `json:"fileName"`
			ResumeData json.RawMessage `json:"resumeData"`
		} `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "resume.pdf", out.File.FileName)
	assert.JSONEq(t, `{"workExperiences":[]}`, string(out.File.ResumeData))

	// Someone else's file is indistinguishable from a missing one.
	req = httptest.NewRequest(http.MethodGet, "/api/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+other.APIToken)
	rec = httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/files/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+owner.APIToken)
	rec = httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(1000, constants.PlanFree)

	file, err := f.files.Create(context.Background(), owner.ID, "resume.pdf", 42, "")
	require.NoError(t, err)
	_, err = f.resumes.Create(context.Background(), owner.ID, file.ID, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, f.history.Append(context.Background(), owner.ID, file.ID, constants.ActionUpload, constants.HistoryStatusSuccess, ""))

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+owner.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.files.byID)
	assert.Empty(t, f.resumes.byFileID)
	assert.Empty(t, f.history.entries)

	req = httptest.NewRequest(http.MethodDelete, "/api/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+owner.APIToken)
	rec = httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillingWebhook(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(0, constants.PlanFree)

	payload, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": billing.EventCheckoutCompleted,
		"data": map[string]any{
			"object": map[string]any{
				"id":           "cs_1",
				"subscription": "sub_1",
				"metadata":     map[string]string{"userId": user.ID.String(), "planType": "BASIC"},
			},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/billing", bytes.NewReader(payload))
	req.Header.Set(billing.SignatureHeader, billing.Sign(payload, f.billing.WebhookSecret, time.Now()))
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, constants.PlanCredits[constants.PlanBasic], user.Credits)
	assert.Equal(t, constants.PlanBasic, user.PlanType)
}

func TestBillingWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong secret", header: billing.Sign(payload, "whsec_other", time.Now())},
		{name: "stale timestamp", header: billing.Sign(payload, "whsec_test", time.Now().Add(-time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/billing", bytes.NewReader(payload))
			if tt.header != "" {
				req.Header.Set(billing.SignatureHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			f.server.Router().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestExportHistory(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(1000, constants.PlanFree)
	require.NoError(t, f.history.Append(context.Background(), user.ID, uuid.New(), constants.ActionUpload, constants.HistoryStatusSuccess, "File uploaded successfully"))

	req := httptest.NewRequest(http.MethodGet, "/api/exports/history", nil)
	req.Header.Set("Authorization", "Bearer "+user.APIToken)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "resume-history.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/extract", nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, rid)
	_, err := uuid.Parse(rid)
	assert.NoError(t, err)
}
