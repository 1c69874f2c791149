package review

import (
	"fmt"
	"strings"

	"github.com/benvon/review-memory/internal/models"
)

// recentSummaryCount is how many of the newest review summaries are echoed to the model
const recentSummaryCount = 3

// BuildUserContext renders a short description of the user's history for the system prompt.
// It returns "" for a user with no reviews.
func BuildUserContext(history models.History) string {
	stats := history.Stats
	if stats.TotalReviews == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User has %d previous reviews in: %s", stats.TotalReviews, strings.Join(stats.LanguagesUsed, ", "))

	if len(stats.CommonIssues) > 0 {
		fmt.Fprintf(&b, "\nRecurring issue areas: %s", strings.Join(stats.CommonIssues, ", "))
	}

	recent := history.Reviews
	if len(recent) > recentSummaryCount {
		recent = recent[len(recent)-recentSummaryCount:]
	}
	if len(recent) > 0 {
		b.WriteString("\nRecent review summaries:")
		// newest first
		for i := len(recent) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "\n- [%s] %s", recent[i].Language, recent[i].Summary)
		}
	}

	return b.String()
}

// TagReview prefixes text with the upper-cased mode for every mode except general
func TagReview(mode models.ReviewMode, text string) string {
	if mode == "" || mode == models.ReviewModeGeneral {
		return text
	}
	return "[" + strings.ToUpper(string(mode)) + "] " + text
}
