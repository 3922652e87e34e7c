package domain

import "time"

// Status is the audit request lifecycle state. Transitions only move forward:
// queued -> processing -> completed|failed.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether next is a legal successor of s.
// Failure is only reachable from processing; queued jobs that never start
// cannot fail.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// AuditRequest tracks one user-submitted contract audit through its
// lifecycle. Records are retained after the terminal state as an audit
// trail; only the backing files are removed.
type AuditRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileID     string    `gorm:"size:256;not null" json:"-"`
	SourcePath string    `gorm:"size:512;not null" json:"-"`
	ReportPath string    `gorm:"size:512;not null" json:"-"`
	Status     Status    `gorm:"size:32;not null;index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
