package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/authrecord/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM session WHERE token = ?`, token,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) DeleteSession(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM session WHERE id = ?`, id).Error
}

func (r *repo) DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM session WHERE expires_at < ?`, now)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertVerification(ctx context.Context, db *gorm.DB, verification *domain.Verification) error {
	return db.WithContext(ctx).Create(verification).Error
}

func (r *repo) FindVerification(ctx context.Context, db *gorm.DB, identifier string) (*domain.Verification, error) {
	var verification domain.Verification
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM verification WHERE identifier = ? ORDER BY created_at DESC LIMIT 1`,
		identifier,
	).Scan(&verification).Error
	if err != nil {
		return nil, err
	}
	if verification.ID == "" {
		return nil, nil
	}
	return &verification, nil
}

func (r *repo) DeleteVerification(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM verification WHERE id = ?`, id).Error
}

func (r *repo) InsertMFAToken(ctx context.Context, db *gorm.DB, token *domain.MFAToken) error {
	return db.WithContext(ctx).Create(token).Error
}

func (r *repo) FindActiveMFAToken(ctx context.Context, db *gorm.DB, userID snowflake.ID, token string) (*domain.MFAToken, error) {
	var mfa domain.MFAToken
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM mfa_tokens
		 WHERE user_id = ? AND token = ? AND is_used = ?
		 ORDER BY created_at DESC LIMIT 1`,
		userID, token, false,
	).Scan(&mfa).Error
	if err != nil {
		return nil, err
	}
	if mfa.ID == 0 {
		return nil, nil
	}
	return &mfa, nil
}

func (r *repo) MarkMFATokenUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, usedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE mfa_tokens SET is_used = ?, used_at = ?, updated_at = ? WHERE id = ?`,
		true, usedAt, usedAt, id,
	).Error
}
