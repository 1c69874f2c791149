package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/storage"
)

func TestPartitionKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		want   string
	}{
		{"empty uses default", "", models.DefaultUserID},
		{"explicit id", "alice", "alice"},
		{"whitespace is kept", " alice ", " alice "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PartitionKey(tt.userID); got != tt.want {
				t.Errorf("PartitionKey(%q) = %q, want %q", tt.userID, got, tt.want)
			}
		})
	}
}

func TestRouter_ResolveReturnsSameLedger(t *testing.T) {
	t.Parallel()

	r := NewRouter(storage.NewMemoryStore())

	var wg sync.WaitGroup
	results := make([]*Ledger, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve("alice")
		}(i)
	}
	wg.Wait()

	for i, l := range results {
		if l != results[0] {
			t.Fatalf("Resolve #%d returned a different ledger", i)
		}
	}
	if r.Resolve("") != r.Resolve(models.DefaultUserID) {
		t.Error("Expected empty user id to resolve to the default ledger")
	}
}

func TestRouter_PartitionsAreIsolated(t *testing.T) {
	t.Parallel()

	r := NewRouter(storage.NewMemoryStore())
	ctx := context.Background()

	if _, err := r.Resolve("alice").Append(ctx, models.AppendInput{Review: "security", Language: "go", Timestamp: 1}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	bob, err := r.Resolve("bob").Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(bob.Reviews) != 0 || bob.Stats.TotalReviews != 0 {
		t.Errorf("Expected bob's ledger to be empty, got %+v", bob)
	}

	keys := r.Keys()
	if len(keys) != 2 || keys[0] != "alice" || keys[1] != "bob" {
		t.Errorf("Expected keys [alice bob], got %v", keys)
	}
}
