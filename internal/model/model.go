package model

import "time"

// Document is a tracked document as the backend returns it.
//
// ExpiryDate travels as a date-only "YYYY-MM-DD" string. The backend also
// stores a status column, but it is only refreshed on writes, so display
// status is always recomputed client-side from ExpiryDate and "now".
type Document struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	DocType    string    `json:"doc_type"`
	ExpiryDate string    `json:"expiry_date"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// HistoryEntry is one renewal record. The log is append-only and owned by
// the backend; DocumentID is a weak reference (the document may be gone).
type HistoryEntry struct {
	ID            int64     `json:"id"`
	DocumentID    int64     `json:"document_id"`
	OldExpiryDate string    `json:"old_expiry_date"`
	NewExpiryDate string    `json:"new_expiry_date"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentCreate is the request body for POST /documents.
type DocumentCreate struct {
	Title      string `json:"title"`
	DocType    string `json:"doc_type"`
	ExpiryDate string `json:"expiry_date"`
}

// DocumentRenew is the request body for POST /documents/{id}/renew.
type DocumentRenew struct {
	NewExpiryDate string `json:"new_expiry_date"`
}

// ReminderResult is the backend's reply to POST /reminders/send.
type ReminderResult struct {
	Sent    int      `json:"sent"`
	Mode    string   `json:"mode"`
	Target  string   `json:"target"`
	Details []string `json:"details,omitempty"`
}

// ClearResult is the backend's reply to POST /documents/clear.
type ClearResult struct {
	Status  string `json:"status"`
	Deleted int    `json:"deleted"`
}

// DeleteResult is the backend's reply to both delete routes.
type DeleteResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}
