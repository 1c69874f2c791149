package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/storage"
)

// Storage keys holding a ledger's state inside its partition
const (
	ReviewsKey = "reviews"
	StatsKey   = "stats"
)

// DefaultWriteTimeout bounds a single persistence call
const DefaultWriteTimeout = 10 * time.Second

var (
	// ErrStorageRead is returned when hydrating a ledger from storage fails
	ErrStorageRead = errors.New("failed to load review history")
	// ErrStorageWrite is returned when persisting an append or clear fails
	ErrStorageWrite = errors.New("failed to save review history")
	// ErrInvalidMode is returned when an append carries an unsupported review mode
	ErrInvalidMode = errors.New("invalid review mode")
)

// Ledger holds one user's bounded review history and running statistics.
// All operations on a Ledger are serialized by its mutex, including the
// storage I/O they perform. Reads are served from the copy hydrated on first
// use; appends reload the persisted pair first, so a clear or append made by
// another writer on the same store is never overwritten by stale memory.
type Ledger struct {
	mu        sync.Mutex
	partition string
	store     storage.Store
	logger    *zap.Logger

	capacity     int
	clock        func() time.Time
	newID        func() string
	writeTimeout time.Duration

	hydrated bool
	reviews  []models.ReviewRecord
	stats    models.UserStats
}

// Option configures a Ledger
type Option func(*Ledger)

// WithCapacity overrides the number of retained records
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithClock overrides the time source used for records without a timestamp
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithIDGenerator overrides record id generation
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWriteTimeout bounds each persistence call
func WithWriteTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.writeTimeout = d
		}
	}
}

// New creates an un-hydrated ledger for partition. No storage I/O happens until the first operation.
func New(partition string, store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		partition:    partition,
		store:        store,
		logger:       zap.NewNop(),
		capacity:     models.MaxReviewsStored,
		clock:        time.Now,
		newID:        uuid.NewString,
		writeTimeout: DefaultWriteTimeout,
		reviews:      []models.ReviewRecord{},
		stats:        models.NewUserStats(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Partition returns the partition key this ledger persists under
func (l *Ledger) Partition() string {
	return l.partition
}

// Read returns a snapshot of the retained records (oldest first) and the statistics
func (l *Ledger) Read(ctx context.Context) (models.History, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.hydrate(ctx); err != nil {
		return models.History{}, err
	}
	return l.snapshot(), nil
}

// Append records a new review and returns the updated statistics.
// State in memory changes only after storage has accepted the write.
func (l *Ledger) Append(ctx context.Context, in models.AppendInput) (models.UserStats, error) {
	_, stats, err := l.AppendRecord(ctx, in)
	return stats, err
}

// AppendRecord is Append that also returns the stored record with its derived fields
func (l *Ledger) AppendRecord(ctx context.Context, in models.AppendInput) (models.ReviewRecord, models.UserStats, error) {
	mode := in.Mode
	if mode == "" {
		mode = models.ReviewModeGeneral
	}
	if !mode.IsValid() {
		return models.ReviewRecord{}, models.UserStats{}, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// the reload belongs to the write: a caller that gives up does not abort it halfway
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.writeTimeout)
	defer cancel()
	if err := l.load(loadCtx); err != nil {
		return models.ReviewRecord{}, models.UserStats{}, err
	}

	record := l.buildRecord(in, mode)
	nextStats := Fold(l.stats, record)
	nextReviews := l.appendBounded(record)

	if err := l.persist(ctx, nextReviews, nextStats); err != nil {
		l.logger.Error("ledger_append_failed",
			zap.String("partition", l.partition),
			zap.Error(err))
		return models.ReviewRecord{}, models.UserStats{}, err
	}

	l.reviews = nextReviews
	l.stats = nextStats

	l.logger.Debug("ledger_append",
		zap.String("partition", l.partition),
		zap.String("review_id", record.ID),
		zap.Int("retained", len(l.reviews)),
		zap.Int("total_reviews", l.stats.TotalReviews))

	return record, l.stats.Clone(), nil
}

// Clear removes all records and resets statistics. Clearing an empty ledger is a no-op success.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.writeTimeout)
	defer cancel()

	if err := l.store.DeleteAll(writeCtx, l.partition, ReviewsKey, StatsKey); err != nil {
		l.logger.Error("ledger_clear_failed",
			zap.String("partition", l.partition),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	l.reviews = []models.ReviewRecord{}
	l.stats = models.NewUserStats()
	l.hydrated = true
	return nil
}

// hydrate loads persisted state once. Callers must hold l.mu.
func (l *Ledger) hydrate(ctx context.Context) error {
	if l.hydrated {
		return nil
	}
	return l.load(ctx)
}

// load replaces the in-memory pair with what storage holds. Callers must hold l.mu.
func (l *Ledger) load(ctx context.Context) error {
	values, err := l.store.Get(ctx, l.partition, ReviewsKey, StatsKey)
	if err != nil {
		l.logger.Error("ledger_hydrate_failed",
			zap.String("partition", l.partition),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageRead, err)
	}

	reviews := []models.ReviewRecord{}
	if raw, ok := values[ReviewsKey]; ok {
		if err := json.Unmarshal(raw, &reviews); err != nil {
			return fmt.Errorf("%w: decode reviews: %w", ErrStorageRead, err)
		}
		if reviews == nil {
			reviews = []models.ReviewRecord{}
		}
	}

	stats := models.NewUserStats()
	if raw, ok := values[StatsKey]; ok {
		if err := json.Unmarshal(raw, &stats); err != nil {
			return fmt.Errorf("%w: decode stats: %w", ErrStorageRead, err)
		}
		stats = normalizeStats(stats)
	}

	l.reviews = reviews
	l.stats = stats
	l.hydrated = true
	return nil
}

func (l *Ledger) buildRecord(in models.AppendInput, mode models.ReviewMode) models.ReviewRecord {
	language := in.Language
	if language == "" {
		language = models.DefaultLanguage
	}

	timestamp := in.Timestamp
	if timestamp == 0 {
		timestamp = l.clock().UnixMilli()
	}
	// keep stored order non-decreasing even if the clock steps backwards
	if timestamp < l.stats.LastReviewDate {
		timestamp = l.stats.LastReviewDate
	}

	return models.ReviewRecord{
		ID:          l.newID(),
		Code:        in.Code,
		Language:    language,
		Review:      in.Review,
		Mode:        mode,
		Timestamp:   timestamp,
		Summary:     Summarize(in.Review),
		Issues:      CountIssues(in.Review),
		Suggestions: CountSuggestions(in.Review),
	}
}

// appendBounded returns a new slice with record appended and the oldest entries evicted
func (l *Ledger) appendBounded(record models.ReviewRecord) []models.ReviewRecord {
	start := 0
	if overflow := len(l.reviews) + 1 - l.capacity; overflow > 0 {
		start = overflow
	}
	next := make([]models.ReviewRecord, 0, l.capacity)
	next = append(next, l.reviews[start:]...)
	return append(next, record)
}

func (l *Ledger) persist(ctx context.Context, reviews []models.ReviewRecord, stats models.UserStats) error {
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("%w: encode reviews: %w", ErrStorageWrite, err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("%w: encode stats: %w", ErrStorageWrite, err)
	}

	// a caller that gives up mid-write must not leave a half-applied pair behind
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.writeTimeout)
	defer cancel()

	if err := l.store.PutAll(writeCtx, l.partition, map[string][]byte{
		ReviewsKey: reviewsJSON,
		StatsKey:   statsJSON,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

func (l *Ledger) snapshot() models.History {
	reviews := make([]models.ReviewRecord, len(l.reviews))
	copy(reviews, l.reviews)
	return models.History{
		Reviews: reviews,
		Stats:   l.stats.Clone(),
	}
}

func normalizeStats(s models.UserStats) models.UserStats {
	if s.LanguagesUsed == nil {
		s.LanguagesUsed = []string{}
	}
	if s.CommonIssues == nil {
		s.CommonIssues = []string{}
	}
	return s
}
