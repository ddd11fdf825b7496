package models

import (
	"fmt"
	"strings"
)

// ModerationStatus is the review state of a comment
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// ModerationStatuses lists every valid status
var ModerationStatuses = []ModerationStatus{StatusPending, StatusApproved, StatusRejected}

// ParseModerationStatus validates s case-insensitively
func ParseModerationStatus(s string) (ModerationStatus, error) {
	status := ModerationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid moderation status %q, must be one of: pending, approved, rejected", s)
	}
	return status, nil
}

// Valid reports whether s is one of the three statuses
func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Label is the display form ("Approved")
func (s ModerationStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Comment represents a visitor comment on a photo
type Comment struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	CommenterName    string           `json:"commenter_name" db:"commenter_name"`
	CommenterEmail   string           `json:"commenter_email,omitempty" db:"commenter_email"`
	CommentText      string           `json:"comment_text" db:"comment_text"`
	PhotoID          string           `json:"photo_id" db:"photo_id"`
	Photo            *Photo           `json:"photo,omitempty" db:"-"`
	ModerationStatus ModerationStatus `json:"moderation_status" db:"moderation_status"`
	CommentDate      Date             `json:"comment_date" db:"comment_date"`
}

// CommentTitle builds the derived comment title
func CommentTitle(name string) string {
	return "Comment by " + name
}

// CommentQuery narrows a comment listing; results are newest comment first
type CommentQuery struct {
	PhotoID string
	Status  *ModerationStatus
}

// CommentStats summarizes comments per moderation status
type CommentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// SubmitCommentRequest is the visitor-supplied comment payload
type SubmitCommentRequest struct {
	CommenterName  string `json:"commenter_name"`
	CommentText    string `json:"comment_text"`
	PhotoID        string `json:"photo_id"`
	CommenterEmail string `json:"commenter_email,omitempty"`
	// Ignored; new comments always start pending
	ModerationStatus string `json:"moderation_status,omitempty"`
}

// UpdateStatusRequest is the admin moderation payload
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
