package models

import (
	"fmt"
	"slices"
)

// ReviewMode selects the reviewer persona used for a review
type ReviewMode string

const (
	ReviewModeGeneral     ReviewMode = "general"
	ReviewModeSecurity    ReviewMode = "security"
	ReviewModePerformance ReviewMode = "performance"
	ReviewModeStyle       ReviewMode = "style"
	ReviewModeComplexity  ReviewMode = "complexity"
)

// ReviewModes lists every supported review mode in display order
var ReviewModes = []ReviewMode{
	ReviewModeGeneral,
	ReviewModeSecurity,
	ReviewModePerformance,
	ReviewModeStyle,
	ReviewModeComplexity,
}

const (
	// DefaultUserID is the partition used when a caller does not identify itself
	DefaultUserID = "default-user"
	// DefaultLanguage is recorded when a caller does not declare a language
	DefaultLanguage = "unknown"
	// MaxReviewsStored is the number of records retained per user
	MaxReviewsStored = 20
)

// IsValid reports whether m is one of the supported modes
func (m ReviewMode) IsValid() bool {
	return slices.Contains(ReviewModes, m)
}

// ParseReviewMode converts a raw value into a ReviewMode, defaulting empty input to general
func ParseReviewMode(value string) (ReviewMode, error) {
	if value == "" {
		return ReviewModeGeneral, nil
	}
	mode := ReviewMode(value)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode: %s (must be one of general, security, performance, style, complexity)", value)
	}
	return mode, nil
}

// ReviewRecord is one reviewed submission held in a user's ledger.
// ID, Summary, Issues and Suggestions are derived by the ledger at append time.
type ReviewRecord struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Language    string     `json:"language"`
	Review      string     `json:"review"`
	Mode        ReviewMode `json:"mode"`
	Timestamp   int64      `json:"timestamp"`
	Summary     string     `json:"summary"`
	Issues      int        `json:"issues"`
	Suggestions int        `json:"suggestions"`
}

// AppendInput carries the caller-supplied fields of a new review record
type AppendInput struct {
	Code      string
	Language  string
	Review    string
	Mode      ReviewMode
	Timestamp int64
}

// UserStats is the cumulative statistics snapshot for one user.
// It covers every review ever appended, not only the retained window.
type UserStats struct {
	TotalReviews   int      `json:"totalReviews"`
	LanguagesUsed  []string `json:"languagesUsed"`
	CommonIssues   []string `json:"commonIssues"`
	LastReviewDate int64    `json:"lastReviewDate"`
}

// NewUserStats returns the zero-valued snapshot with non-nil sets
func NewUserStats() UserStats {
	return UserStats{
		LanguagesUsed: []string{},
		CommonIssues:  []string{},
	}
}

// Clone returns a deep copy of s
func (s UserStats) Clone() UserStats {
	out := s
	out.LanguagesUsed = append(make([]string, 0, len(s.LanguagesUsed)), s.LanguagesUsed...)
	out.CommonIssues = append(make([]string, 0, len(s.CommonIssues)), s.CommonIssues...)
	return out
}

// History is the read view of a ledger: retained records plus the stats snapshot
type History struct {
	Reviews []ReviewRecord `json:"reviews"`
	Stats   UserStats      `json:"stats"`
}
