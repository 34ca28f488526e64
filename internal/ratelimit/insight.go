package ratelimit

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThrottleInsight is the persisted snapshot of a client's bucket state,
// one row per key, overwritten on every decision.
type ThrottleInsight struct {
	Key               string  `gorm:"primaryKey;size:225" json:"key"`
	WaitTime          int     `gorm:"not null" json:"wait_time"`
	MsBeforeNext      int     `gorm:"column:ms_before_next;not null" json:"ms_before_next"`
	EndPoint          *string `gorm:"size:225" json:"end_point,omitempty"`
	PointsAllotted    int     `gorm:"column:allotted_points;not null" json:"allotted_points"`
	ConsumedPoints    int     `gorm:"not null" json:"consumed_points"`
	RemainingPoints   int     `gorm:"not null" json:"remaining_points"`
	IsFirstInDuration bool    `gorm:"not null" json:"is_first_in_duration"`
}

func (ThrottleInsight) TableName() string { return "throttle_insight" }

type InsightRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, insight *ThrottleInsight) error
	Find(ctx context.Context, db *gorm.DB, key string) (*ThrottleInsight, error)
}

type insightRepo struct{}

func NewInsightRepository() InsightRepository {
	return &insightRepo{}
}

func (r *insightRepo) Upsert(ctx context.Context, db *gorm.DB, insight *ThrottleInsight) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(insight).Error
}

func (r *insightRepo) Find(ctx context.Context, db *gorm.DB, key string) (*ThrottleInsight, error) {
	var insight ThrottleInsight
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM throttle_insight WHERE key = ?`, key,
	).Scan(&insight).Error
	if err != nil {
		return nil, err
	}
	if insight.Key == "" {
		return nil, nil
	}
	return &insight, nil
}
