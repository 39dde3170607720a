package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commit-tracker/internal/model"
)

// CommitRepository persists synchronized git commits.
type CommitRepository struct {
	db *gorm.DB
}

func NewCommitRepository(db *gorm.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

// Upsert inserts a commit record, or refreshes only the summary when the
// hash has been seen before. Safe under concurrent duplicate deliveries:
// the unique index on commit_hash turns the losing insert into the update.
func (r *CommitRepository) Upsert(ctx context.Context, commit *model.Commit) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "commit_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"summary": commit.Summary,
		}),
	}).Create(commit).Error
	if err != nil {
		return fmt.Errorf("upsert commit: %w", err)
	}
	return nil
}

// FindByHash returns the commit record for a hash, if any.
func (r *CommitRepository) FindByHash(ctx context.Context, hash string) (*model.Commit, error) {
	var commit model.Commit
	if err := r.db.WithContext(ctx).Where("commit_hash = ?", hash).First(&commit).Error; err != nil {
		return nil, err
	}
	return &commit, nil
}

// ListByUser returns the owner's commits, most recent first.
func (r *CommitRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.Commit, error) {
	if limit <= 0 {
		limit = 50
	}
	var commits []model.Commit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("committed_at DESC").
		Limit(limit).Offset(offset).
		Find(&commits).Error; err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	return commits, nil
}

// DailyCommitStat aggregates one day of commit activity.
type DailyCommitStat struct {
	Date              string `json:"date"`
	CommitCount       int    `json:"commit_count"`
	TotalFilesChanged int    `json:"total_files_changed"`
	TotalInsertions   int    `json:"total_insertions"`
	TotalDeletions    int    `json:"total_deletions"`
}

// DailyStats returns per-day commit aggregates, newest first, capped at 30 days.
func (r *CommitRepository) DailyStats(ctx context.Context, userID uint, from, to *time.Time) ([]DailyCommitStat, error) {
	q := r.db.WithContext(ctx).Model(&model.Commit{}).
		Select("DATE(committed_at) as date, COUNT(*) as commit_count, "+
			"SUM(files_changed) as total_files_changed, "+
			"SUM(insertions) as total_insertions, "+
			"SUM(deletions) as total_deletions").
		Where("user_id = ?", userID)
	if from != nil && to != nil {
		q = q.Where("committed_at BETWEEN ? AND ?", *from, *to)
	}
	var stats []DailyCommitStat
	if err := q.Group("DATE(committed_at)").
		Order("date DESC").
		Limit(30).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("commit stats: %w", err)
	}
	return stats, nil
}
