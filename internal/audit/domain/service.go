package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
	"gorm.io/gorm"
)

// Entry describes a state change to be recorded. OldValues and NewValues
// are snapshots of the mutated fields before and after the change.
type Entry struct {
	UserID     *snowflake.ID
	StoreID    *snowflake.ID
	Action     string
	EntityType string
	EntityID   string
	OldValues  map[string]any
	NewValues  map[string]any
}

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	EntityType string
	EntityID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

// Service appends audit rows. Record runs on the caller's transaction
// handle so the audit row and the triggering mutation commit or roll back
// together; a failed audit write is fatal to the operation.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidStore     = errors.New("invalid_store")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
