package model

import "time"

// Commit is the durable record of one source-control commit that has been
// synchronized into the tracker. Exactly one row exists per hash; repeated
// deliveries only refresh the summary.
type Commit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	Hash         string    `gorm:"column:commit_hash;uniqueIndex;not null" json:"commit_hash"`
	Branch       string    `gorm:"not null" json:"branch"`
	Message      string    `gorm:"not null" json:"message"`
	Summary      string    `json:"summary"`
	FilesChanged int       `gorm:"default:0" json:"files_changed"`
	Insertions   int       `gorm:"default:0" json:"insertions"`
	Deletions    int       `gorm:"default:0" json:"deletions"`
	CommittedAt  time.Time `gorm:"index;not null" json:"committed_at"`
	CreatedAt    time.Time `json:"created_at"`
}
