package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joaodperes/stardust/internal/repository"
)

// PageSize is the number of reports per inbox page.
const PageSize = 10

// Service handles report inbox operations.
type Service struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new report service. now may be nil.
func NewService(store repository.Store, logger *slog.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, logger: logger, now: now}
}

// prepare assigns an id and timestamp. Ids are UUIDv7 so they sort by time.
func (s *Service) prepare(r *Report) ([]byte, error) {
	if r.OwnerID == "" || r.Kind == "" {
		return nil, ErrInvalidInput
	}
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generating report id: %w", err)
		}
		r.ID = id.String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// Deliver writes r to its owner's inbox.
func (s *Service) Deliver(ctx context.Context, r Report) (*Report, error) {
	data, err := s.prepare(&r)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, repository.ReportPath(r.OwnerID, r.ID), data); err != nil {
		return nil, fmt.Errorf("delivering report: %w", err)
	}
	s.logger.Debug("report delivered", "owner", r.OwnerID, "kind", r.Kind, "id", r.ID)
	return &r, nil
}

// Stage buffers r into txn so it commits together with other writes.
func (s *Service) Stage(txn repository.Txn, r Report) (*Report, error) {
	data, err := s.prepare(&r)
	if err != nil {
		return nil, err
	}
	txn.Put(repository.ReportPath(r.OwnerID, r.ID), data)
	return &r, nil
}

// Get fetches one report.
func (s *Service) Get(ctx context.Context, playerID, id string) (*Report, error) {
	data, err := s.store.Read(ctx, repository.ReportPath(playerID, id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("getting report: %w", err)
	}
	r, err := decode(data)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns page (1-indexed) of the inbox, newest first, with the
// inbox totals.
func (s *Service) List(ctx context.Context, playerID string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	entries, err := s.store.List(ctx, repository.ReportsPrefix(playerID))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	all := make([]Report, 0, len(entries))
	unread := 0
	for _, entry := range entries {
		r, err := decode(entry.Value)
		if err != nil {
			s.logger.Warn("skipping unreadable report", "path", entry.Path, "error", err)
			continue
		}
		if !r.Read {
			unread++
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].ID > all[j].ID
	})

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(all))
	result := &Page{
		Reports:  []Report{},
		Page:     page,
		PageSize: PageSize,
		Total:    len(all),
		Unread:   unread,
	}
	if start < len(all) {
		result.Reports = all[start:end]
		result.HasMore = end < len(all)
	}
	return result, nil
}

// MarkRead flags a report as read.
func (s *Service) MarkRead(ctx context.Context, playerID, id string) (*Report, error) {
	var updated Report
	_, err := s.store.TransactionalUpdate(ctx, repository.ReportPath(playerID, id), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrReportNotFound
		}
		r, err := decode(current)
		if err != nil {
			return nil, err
		}
		r.Read = true
		updated = r
		return json.Marshal(r)
	})
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("marking report read: %w", err)
	}
	return &updated, nil
}

// ClearAll deletes every report in the inbox and returns how many went.
func (s *Service) ClearAll(ctx context.Context, playerID string) (int, error) {
	keys, err := s.store.Keys(ctx, repository.ReportsPrefix(playerID))
	if err != nil {
		return 0, fmt.Errorf("listing reports: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	writes := make(map[string][]byte, len(keys))
	for _, key := range keys {
		writes[key] = nil
	}
	if err := s.store.BatchUpdate(ctx, writes); err != nil {
		return 0, fmt.Errorf("clearing reports: %w", err)
	}
	s.logger.Info("inbox cleared", "player", playerID, "count", len(keys))
	return len(keys), nil
}
