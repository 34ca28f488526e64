package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, id string) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)

	InsertVerification(ctx context.Context, db *gorm.DB, verification *Verification) error
	FindVerification(ctx context.Context, db *gorm.DB, identifier string) (*Verification, error)
	DeleteVerification(ctx context.Context, db *gorm.DB, id string) error

	InsertMFAToken(ctx context.Context, db *gorm.DB, token *MFAToken) error
	FindActiveMFAToken(ctx context.Context, db *gorm.DB, userID snowflake.ID, token string) (*MFAToken, error)
	MarkMFATokenUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, usedAt time.Time) error
}
