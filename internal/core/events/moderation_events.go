package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeIssueFlagged   = "issue.inappropriate_flagged"
	EventTypeIssueCleared   = "issue.inappropriate_cleared"
	EventTypeUserSuspended  = "user.suspended"
	EventTypeUserReinstated = "user.reinstated"
)

// IssueFlaggedEvent fires when an issue's reporter count crosses the
// escalation threshold and the issue is suppressed.
type IssueFlaggedEvent struct {
	BaseEvent
	IssueID     int64 `json:"issue_id"`
	AuthorID    int64 `json:"author_id"`
	ReportCount int   `json:"report_count"`
}

func NewIssueFlaggedEvent(issueID, authorID int64, reportCount int) *IssueFlaggedEvent {
	return &IssueFlaggedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIssueFlagged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"issue_id":     issueID,
				"author_id":    authorID,
				"report_count": reportCount,
			},
		},
		IssueID:     issueID,
		AuthorID:    authorID,
		ReportCount: reportCount,
	}
}

type IssueClearedEvent struct {
	BaseEvent
	IssueID     int64 `json:"issue_id"`
	AuthorID    int64 `json:"author_id"`
	ReportCount int   `json:"report_count"`
}

func NewIssueClearedEvent(issueID, authorID int64, reportCount int) *IssueClearedEvent {
	return &IssueClearedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIssueCleared,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"issue_id":     issueID,
				"author_id":    authorID,
				"report_count": reportCount,
			},
		},
		IssueID:     issueID,
		AuthorID:    authorID,
		ReportCount: reportCount,
	}
}

// UserSuspendedEvent fires when an author's violation count crosses the
// suspension threshold.
type UserSuspendedEvent struct {
	BaseEvent
	UserID         int64 `json:"user_id"`
	ViolationCount int   `json:"violation_count"`
}

func NewUserSuspendedEvent(userID int64, violationCount int) *UserSuspendedEvent {
	return &UserSuspendedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserSuspended,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":         userID,
				"violation_count": violationCount,
			},
		},
		UserID:         userID,
		ViolationCount: violationCount,
	}
}

type UserReinstatedEvent struct {
	BaseEvent
	UserID         int64 `json:"user_id"`
	ViolationCount int   `json:"violation_count"`
}

func NewUserReinstatedEvent(userID int64, violationCount int) *UserReinstatedEvent {
	return &UserReinstatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserReinstated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":         userID,
				"violation_count": violationCount,
			},
		},
		UserID:         userID,
		ViolationCount: violationCount,
	}
}
