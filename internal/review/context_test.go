package review

import (
	"strings"
	"testing"

	"github.com/benvon/review-memory/internal/models"
)

func TestBuildUserContext(t *testing.T) {
	t.Parallel()

	record := func(lang, summary string) models.ReviewRecord {
		return models.ReviewRecord{Language: lang, Summary: summary}
	}

	tests := []struct {
		name      string
		history   models.History
		want      []string
		notWant   []string
		wantExact string
	}{
		{
			name:      "new user",
			history:   models.History{Reviews: []models.ReviewRecord{}, Stats: models.NewUserStats()},
			wantExact: "",
		},
		{
			name: "languages and issues",
			history: models.History{
				Reviews: []models.ReviewRecord{record("go", "one...")},
				Stats: models.UserStats{
					TotalReviews:  3,
					LanguagesUsed: []string{"go", "python"},
					CommonIssues:  []string{"security"},
				},
			},
			want: []string{
				"User has 3 previous reviews in: go, python",
				"Recurring issue areas: security",
				"- [go] one...",
			},
		},
		{
			name: "only three newest summaries, newest first",
			history: models.History{
				Reviews: []models.ReviewRecord{
					record("go", "first"),
					record("go", "second"),
					record("go", "third"),
					record("go", "fourth"),
				},
				Stats: models.UserStats{TotalReviews: 4, LanguagesUsed: []string{"go"}, CommonIssues: []string{}},
			},
			want:    []string{"- [go] fourth\n- [go] third\n- [go] second"},
			notWant: []string{"first", "Recurring issue areas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BuildUserContext(tt.history)
			if tt.want == nil && got != tt.wantExact {
				t.Fatalf("BuildUserContext() = %q, want %q", got, tt.wantExact)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in %q", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Did not expect %q in %q", nw, got)
				}
			}
		})
	}
}

func TestTagReview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode models.ReviewMode
		want string
	}{
		{models.ReviewModeGeneral, "text"},
		{"", "text"},
		{models.ReviewModeSecurity, "[SECURITY] text"},
		{models.ReviewModePerformance, "[PERFORMANCE] text"},
		{models.ReviewModeStyle, "[STYLE] text"},
		{models.ReviewModeComplexity, "[COMPLEXITY] text"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			if got := TagReview(tt.mode, "text"); got != tt.want {
				t.Errorf("TagReview(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}
