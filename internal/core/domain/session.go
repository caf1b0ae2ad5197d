package domain

import "time"

// Session is the per-tab record of the currently uploaded file and its derived
// table. The table and selected sheet are replaced wholesale on every new file
// or sheet change, never mutated in place.
type Session struct {
	ID              string       `json:"id"`
	CurrentFileName string       `json:"current_file_name,omitempty"`
	Category        FileCategory `json:"category,omitempty"`
	StorageKey      string       `json:"-"`
	SheetNames      []string     `json:"sheet_names,omitempty"`
	SelectedSheet   string       `json:"selected_sheet,omitempty"`
	Table           *Table       `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (s *Session) HasFile() bool {
	return s != nil && s.CurrentFileName != ""
}

// ClearUpload drops the uploaded file state wholesale. The session stays
// usable for the next upload attempt.
func (s *Session) ClearUpload() {
	s.CurrentFileName = ""
	s.Category = ""
	s.StorageKey = ""
	s.SheetNames = nil
	s.SelectedSheet = ""
	s.Table = nil
}

// UploadStoredEvent announces that an upload's raw bytes were persisted.
// PreviousKey names the blob the upload superseded, if any; the retention
// worker uses it to reclaim storage.
type UploadStoredEvent struct {
	SessionID   string    `json:"session_id"`
	StorageKey  string    `json:"storage_key"`
	PreviousKey string    `json:"previous_key,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}
