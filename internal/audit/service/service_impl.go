package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/observability"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    auditdomain.Repository
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    auditdomain.Repository
	metrics *observability.Metrics
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("audit.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	if tx == nil {
		tx = s.db
	}

	entityType := strings.TrimSpace(entry.EntityType)
	if entityType == "" {
		entityType = "unknown"
	}

	row := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		UserID:     s.resolveActor(ctx, entry.UserID),
		StoreID:    s.resolveStoreID(ctx, entry.StoreID),
		Action:     action,
		EntityType: entityType,
		CreatedAt:  s.clock.Now(),
	}
	if entityID := strings.TrimSpace(entry.EntityID); entityID != "" {
		row.EntityID = &entityID
	}
	if len(entry.OldValues) > 0 {
		row.OldValues = datatypes.JSONMap(entry.OldValues)
	}
	if len(entry.NewValues) > 0 {
		row.NewValues = datatypes.JSONMap(entry.NewValues)
	}
	if ip := auditctx.IPAddressFromContext(ctx); ip != "" {
		row.IPAddress = &ip
	}
	if ua := auditctx.UserAgentFromContext(ctx); ua != "" {
		row.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, tx, &row); err != nil {
		s.metrics.IncrementAuditFailure()
		s.log.Error("audit write failed, aborting mutation",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidStore
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	var cursor *auditdomain.AuditCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursor = &auditdomain.AuditCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		StoreID:    storeID,
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      pageSize,
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *auditdomain.AuditLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	resp := auditdomain.ListAuditLogResponse{AuditLogs: logs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) resolveActor(ctx context.Context, userID *snowflake.ID) *snowflake.ID {
	if userID != nil && *userID != 0 {
		return userID
	}
	actor := auditctx.ActorFromContext(ctx)
	if actor == "" {
		return nil
	}
	parsed, err := snowflake.ParseString(actor)
	if err != nil || parsed == 0 {
		return nil
	}
	return &parsed
}

func (s *Service) resolveStoreID(ctx context.Context, storeID *snowflake.ID) *snowflake.ID {
	if storeID != nil && *storeID != 0 {
		return storeID
	}
	resolved, ok := storectx.StoreIDFromContext(ctx)
	if !ok || resolved == 0 {
		return nil
	}
	return &resolved
}
