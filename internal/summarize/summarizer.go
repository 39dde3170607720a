// Package summarize turns commit messages and task descriptions into short
// human-readable synopses. Summarization can be entirely unavailable (no
// API key, network down, quota exhausted); every path degrades to a
// deterministic truncation of the input and never returns an error.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	commitSummaryLimit = 50
	taskSummaryLimit   = 30
)

// ChangeStats carries the diff counters of one commit.
type ChangeStats struct {
	FilesChanged int `json:"filesChanged"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

// CommitInfo is the summarizer input for a single commit.
type CommitInfo struct {
	Hash    string
	Message string
	Stats   ChangeStats
}

// Completer is the single language-generation operation the summarizer
// consumes. *Client implements it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Summarizer produces summaries with a hard no-fail contract.
type Summarizer struct {
	client Completer
}

// New builds a Summarizer. A nil client disables generation; everything
// falls back to truncation.
func New(client Completer) *Summarizer {
	return &Summarizer{client: client}
}

// SummarizeCommit returns a summary of at most ~50 characters for the
// commit. On any failure it falls back to the first 50 characters of the
// commit message.
func (s *Summarizer) SummarizeCommit(ctx context.Context, info CommitInfo) string {
	fallback := Truncate(info.Message, commitSummaryLimit)
	if s.client == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Write a concise, clear work summary for the following git commit. "+
			"Keep it within 50 characters.\n\n"+
			"Commit message: %s\nFiles changed: %d\nLines added: %d\nLines deleted: %d\n\nSummary:",
		info.Message, info.Stats.FilesChanged, info.Stats.Insertions, info.Stats.Deletions,
	)

	reply, err := s.client.Complete(ctx,
		"You are an expert at concisely summarizing git commits.",
		prompt, 100)
	if err != nil {
		log.Warn().Err(err).Str("hash", info.Hash).Msg("commit summarization failed, using fallback")
		return fallback
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return fallback
	}
	return reply
}

// SummarizeText condenses free text to ~30 characters, falling back to a
// truncation of the input.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) string {
	fallback := Truncate(text, taskSummaryLimit)
	if s.client == nil {
		return fallback
	}

	reply, err := s.client.Complete(ctx,
		"You are an expert at concisely summarizing work items.",
		fmt.Sprintf("Summarize the following work description within 30 characters:\n\n%s", text),
		50)
	if err != nil {
		log.Warn().Err(err).Msg("text summarization failed, using fallback")
		return fallback
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return fallback
	}
	return reply
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
