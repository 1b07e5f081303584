package constants

// FileStatus is the canonical status for rows in files.
type FileStatus string

// Stable values (store these exact strings in DB).
const (
	FileStatusProcessing FileStatus = "processing" // upload accepted, extraction in progress
	FileStatusCompleted  FileStatus = "completed"  // resume data extracted and stored
	FileStatusFailed     FileStatus = "failed"     // terminal failure
)

// HistoryAction labels rows in resume_history.
type HistoryAction string

const (
	ActionUpload  HistoryAction = "upload"
	ActionExtract HistoryAction = "extract"
	ActionDelete  HistoryAction = "delete"
)

// HistoryStatus is the outcome recorded with a history entry.
type HistoryStatus string

const (
	HistoryStatusSuccess HistoryStatus = "success"
	HistoryStatusFailed  HistoryStatus = "failed"
)
