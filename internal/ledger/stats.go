package ledger

import (
	"regexp"
	"slices"
	"strings"

	"github.com/benvon/review-memory/internal/models"
)

// SummaryLength is the number of characters of review text kept in a record summary
const SummaryLength = 100

var (
	issuePattern      = regexp.MustCompile(`(?i)issue|problem|bug|error|wrong`)
	suggestionPattern = regexp.MustCompile(`(?i)suggest|recommend|consider|should|could`)
	// matched against lower-cased text
	issueCategoryPattern = regexp.MustCompile(`\b(security|performance|readability|maintainability|error handling|validation)\b`)
)

// IssueCategories is the fixed vocabulary tracked in UserStats.CommonIssues
var IssueCategories = []string{
	"security",
	"performance",
	"readability",
	"maintainability",
	"error handling",
	"validation",
}

// Summarize returns the first SummaryLength characters of text followed by an ellipsis
func Summarize(text string) string {
	runes := []rune(text)
	if len(runes) > SummaryLength {
		runes = runes[:SummaryLength]
	}
	return string(runes) + "..."
}

// CountIssues counts case-insensitive issue keyword matches in text
func CountIssues(text string) int {
	return len(issuePattern.FindAllStringIndex(text, -1))
}

// CountSuggestions counts case-insensitive suggestion keyword matches in text
func CountSuggestions(text string) int {
	return len(suggestionPattern.FindAllStringIndex(text, -1))
}

// DetectIssueCategories returns the vocabulary categories mentioned in text,
// in order of first appearance and without duplicates.
func DetectIssueCategories(text string) []string {
	matches := issueCategoryPattern.FindAllString(strings.ToLower(text), -1)
	found := make([]string, 0, len(matches))
	for _, m := range matches {
		found = appendUnique(found, m)
	}
	return found
}

// Fold derives the snapshot that results from appending record on top of prev.
// prev is not modified. The fold only looks at the new record, so statistics
// survive eviction of older records from the retained window.
func Fold(prev models.UserStats, record models.ReviewRecord) models.UserStats {
	next := prev.Clone()
	next.TotalReviews++
	next.LanguagesUsed = appendUnique(next.LanguagesUsed, record.Language)
	for _, category := range DetectIssueCategories(record.Review) {
		next.CommonIssues = appendUnique(next.CommonIssues, category)
	}
	next.LastReviewDate = record.Timestamp
	return next
}

func appendUnique(set []string, value string) []string {
	if slices.Contains(set, value) {
		return set
	}
	return append(set, value)
}
