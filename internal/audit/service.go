// Package audit adalah audit log append-only untuk perubahan akses dan event host.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

const (
	defaultLimit    = 20
	maxLimit        = 200
	maxActionLength = 50
)

// Repository adalah port penyimpanan audit log.
type Repository interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	Query(ctx context.Context, f Filters) ([]Entry, error)
	Count(ctx context.Context, f Filters) (int, error)
	ActionTypes(ctx context.Context) ([]string, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
	Truncate(ctx context.Context) error
	DailyActionCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	ActorCounts(ctx context.Context, limit, offset int) ([]ActorCount, error)
}

// Config mengatur perilaku audit log.
type Config struct {
	// Enabled false membuat Append menjadi no-op.
	Enabled bool
	// RetentionDays dipakai job purge; 0 berarti simpan selamanya.
	RetentionDays int
}

// Service mengoordinasikan penulisan dan pembacaan audit log.
type Service struct {
	repo   Repository
	logger *slog.Logger
	cfg    Config
	now    func() time.Time
}

// NewService membuat service audit baru.
func NewService(repo Repository, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, cfg: cfg, now: time.Now}
}

// Enabled melaporkan apakah audit log aktif.
func (s *Service) Enabled() bool {
	return s.cfg.Enabled
}

// Append menulis satu entri. Input kosong ditolak tanpa menulis baris.
func (s *Service) Append(ctx context.Context, actorID int64, action, description string) error {
	if !s.cfg.Enabled {
		return nil
	}
	action = strings.TrimSpace(action)
	description = strings.TrimSpace(description)
	var verr *shared.ValidationError
	switch {
	case action == "":
		verr = shared.NewValidationError("action", "required")
	case utf8.RuneCountInString(action) > maxActionLength:
		verr = shared.NewValidationError("action", fmt.Sprintf("longer than %d characters", maxActionLength))
	case description == "":
		verr = shared.NewValidationError("description", "required")
	}
	if verr != nil {
		s.logger.Warn("audit: entry rejected",
			slog.Int64("actor_id", actorID),
			slog.String("action", action),
			slog.Any("error", verr))
		return verr
	}
	if actorID < 0 {
		actorID = 0
	}
	if _, err := s.repo.Insert(ctx, Entry{ActorID: actorID, Action: action, Description: description}); err != nil {
		return err
	}
	return nil
}

// Query mengambil entri sesuai filter, terbaru lebih dulu.
func (s *Service) Query(ctx context.Context, f Filters) ([]Entry, error) {
	f, err := normalizeFilters(f)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Count menghitung entri yang cocok dengan filter.
func (s *Service) Count(ctx context.Context, f Filters) (int, error) {
	f, err := normalizeFilters(f)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, f)
}

// ActionTypes mengembalikan daftar action yang pernah tercatat.
func (s *Service) ActionTypes(ctx context.Context) ([]string, error) {
	return s.repo.ActionTypes(ctx)
}

// Page mengambil satu halaman entri dengan lookahead satu baris untuk HasNext.
func (s *Service) Page(ctx context.Context, f Filters, page, pageSize int) (Result, error) {
	if pageSize <= 0 {
		pageSize = defaultLimit
	}
	if pageSize > maxLimit {
		pageSize = maxLimit
	}
	if page <= 0 {
		page = 1
	}
	f, err := normalizeFilters(f)
	if err != nil {
		return Result{}, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return Result{}, err
	}
	f.Offset = (page - 1) * pageSize
	f.Limit = pageSize + 1
	entries, err := s.repo.Query(ctx, f)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Result{
		Entries:    entries,
		Pagination: shared.NewPagination(page, pageSize, total),
		HasNext:    hasNext,
	}, nil
}

// Recent mengembalikan n entri terbaru.
func (s *Service) Recent(ctx context.Context, n int) ([]Entry, error) {
	return s.Query(ctx, Filters{Limit: n})
}

// Purge menghapus entri yang lebih tua dari olderThan.
func (s *Service) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	removed, err := s.repo.Purge(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("audit: purged entries", slog.Int64("removed", removed), slog.Time("before", olderThan))
	}
	return removed, nil
}

// PurgeExpired menerapkan RetentionDays relatif terhadap waktu sekarang.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	return s.Purge(ctx, s.now().AddDate(0, 0, -s.cfg.RetentionDays))
}

// Truncate menghapus seluruh audit log.
func (s *Service) Truncate(ctx context.Context) error {
	return s.repo.Truncate(ctx)
}

// DailyActionCounts meneruskan agregasi harian ke repository.
func (s *Service) DailyActionCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	return s.repo.DailyActionCounts(ctx, since)
}

// ActorCounts meneruskan ranking aktor ke repository.
func (s *Service) ActorCounts(ctx context.Context, limit, offset int) ([]ActorCount, error) {
	return s.repo.ActorCounts(ctx, limit, offset)
}

func normalizeFilters(f Filters) (Filters, error) {
	f.ActionType = strings.TrimSpace(f.ActionType)
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return Filters{}, shared.NewValidationError("date_from", "after date_to")
	}
	return f, nil
}
