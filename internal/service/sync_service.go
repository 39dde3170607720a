package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/summarize"
)

// commitTitleLimit bounds the task title when the summary is empty and the
// raw message is used instead.
const commitTitleLimit = 100

// CommitMeta is the commit portion of an inbound sync event.
type CommitMeta struct {
	Hash   string
	Branch string
	Date   time.Time
	Stats  summarize.ChangeStats
}

// CommitEvent is one inbound commit delivery from a local script or webhook.
type CommitEvent struct {
	Message string
	Branch  string
	Commit  CommitMeta
}

// SyncResult is what the caller gets back. Persisted is false for anonymous
// events, which are acknowledged but never written.
type SyncResult struct {
	Summary   string
	Hash      string
	Persisted bool
}

// SyncService turns commit events into commit records and completed tasks.
// The whole pipeline is idempotent per commit hash: re-delivery refreshes
// the summary and nothing else.
type SyncService struct {
	commitRepo     *repository.CommitRepository
	taskRepo       *repository.TaskRepository
	userRepo       *repository.UserRepository
	summarizer     *summarize.Summarizer
	summaryTimeout time.Duration
}

func NewSyncService(commitRepo *repository.CommitRepository, taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, summarizer *summarize.Summarizer, summaryTimeout time.Duration) *SyncService {
	if summaryTimeout <= 0 {
		summaryTimeout = 10 * time.Second
	}
	return &SyncService{
		commitRepo:     commitRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		summarizer:     summarizer,
		summaryTimeout: summaryTimeout,
	}
}

// Sync processes one commit event for the given owner. userID zero means
// the caller could not be identified: the event is summarized and
// acknowledged, but no rows are written.
func (s *SyncService) Sync(ctx context.Context, userID uint, event CommitEvent) (SyncResult, error) {
	if strings.TrimSpace(event.Message) == "" || event.Commit.Hash == "" {
		return SyncResult{}, apperror.Validationf("commit message and commit metadata are required")
	}

	// Summarization runs under its own bounded timeout and cannot fail;
	// at worst the summary is the truncated commit message.
	sctx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	summary := s.summarizer.SummarizeCommit(sctx, summarize.CommitInfo{
		Hash:    event.Commit.Hash,
		Message: event.Message,
		Stats:   event.Commit.Stats,
	})
	cancel()

	result := SyncResult{Summary: summary, Hash: event.Commit.Hash}

	if userID == 0 {
		log.Warn().Str("hash", event.Commit.Hash).Msg("unauthenticated commit event, skipping persistence")
		return result, nil
	}

	// Tokens are minted by an external auth service, so a valid one can
	// outlive its account row. Such events degrade to anonymous handling.
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if err == apperror.ErrNotFound {
			log.Warn().Uint("user_id", userID).Str("hash", event.Commit.Hash).Msg("unknown commit owner, skipping persistence")
			return result, nil
		}
		return SyncResult{}, err
	}

	branch := event.Commit.Branch
	if branch == "" {
		branch = event.Branch
	}
	if branch == "" {
		branch = "main"
	}

	committedAt := event.Commit.Date
	if committedAt.IsZero() {
		committedAt = time.Now()
	}

	commit := model.Commit{
		UserID:       userID,
		Hash:         event.Commit.Hash,
		Branch:       branch,
		Message:      event.Message,
		Summary:      summary,
		FilesChanged: event.Commit.Stats.FilesChanged,
		Insertions:   event.Commit.Stats.Insertions,
		Deletions:    event.Commit.Stats.Deletions,
		CommittedAt:  committedAt,
	}
	if err := s.commitRepo.Upsert(ctx, &commit); err != nil {
		return SyncResult{}, err
	}

	title := summary
	if title == "" {
		title = summarize.Truncate(event.Message, commitTitleLimit)
	}
	hash := event.Commit.Hash
	task := model.Task{
		UserID:        userID,
		Title:         title,
		Description:   "Git commit: " + event.Message,
		Status:        model.StatusCompleted,
		Priority:      model.PriorityMedium,
		GitCommitHash: &hash,
		GitBranch:     branch,
		GitSummary:    summary,
	}
	if err := s.taskRepo.UpsertCommitTask(ctx, &task); err != nil {
		return SyncResult{}, err
	}

	log.Info().Str("hash", hash).Str("branch", branch).Msg("commit synchronized")
	result.Persisted = true
	return result, nil
}
