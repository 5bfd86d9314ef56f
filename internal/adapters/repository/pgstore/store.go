// Package pgstore implements repository.EventStore on PostgreSQL. Transition
// events live in an append-only table keyed by their deterministic id.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

const storeName = "postgres"

const insertEvent = `
INSERT INTO transition_events
    (id, profile_urn, from_company_urn, to_company_urn, transition_date,
     old_title, new_title, seniority_change, tenure_days, location_change)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING`

const selectRange = `
SELECT id::text AS id, profile_urn, from_company_urn, to_company_urn, transition_date,
       old_title, new_title, seniority_change, tenure_days, location_change
FROM transition_events
WHERE (from_company_urn = $1 OR to_company_urn = $1)
  AND ($2::timestamptz IS NULL OR transition_date >= $2)
  AND ($3::timestamptz IS NULL OR transition_date < $3)
ORDER BY transition_date, id`

var _ repository.EventStore = (*Store)(nil)

// eventRow mirrors a transition_events row.
type eventRow struct {
	ID              string    `db:"id"`
	ProfileURN      string    `db:"profile_urn"`
	FromCompanyURN  string    `db:"from_company_urn"`
	ToCompanyURN    string    `db:"to_company_urn"`
	Date            time.Time `db:"transition_date"`
	OldTitle        string    `db:"old_title"`
	NewTitle        string    `db:"new_title"`
	SeniorityChange int32     `db:"seniority_change"`
	TenureDays      int32     `db:"tenure_days"`
	LocationChange  bool      `db:"location_change"`
}

func (r eventRow) event() model.TransitionEvent {
	return model.TransitionEvent{
		ID:              r.ID,
		ProfileURN:      r.ProfileURN,
		FromCompanyURN:  r.FromCompanyURN,
		ToCompanyURN:    r.ToCompanyURN,
		Date:            r.Date.UTC(),
		OldTitle:        r.OldTitle,
		NewTitle:        r.NewTitle,
		SeniorityChange: int(r.SeniorityChange),
		TenureDays:      int(r.TenureDays),
		LocationChange:  r.LocationChange,
	}
}

func insertArgs(ev model.TransitionEvent) []any {
	return []any{
		ev.ID, ev.ProfileURN, ev.FromCompanyURN, ev.ToCompanyURN, ev.Date.UTC(),
		ev.OldTitle, ev.NewTitle, int32(ev.SeniorityChange), int32(ev.TenureDays), ev.LocationChange,
	}
}

// rangeArgs passes open window bounds as NULL.
func rangeArgs(company string, w model.Window) []any {
	var start, end *time.Time
	if !w.Start.IsZero() {
		s := w.Start.UTC()
		start = &s
	}
	if !w.End.IsZero() {
		e := w.End.UTC()
		end = &e
	}
	return []any{company, start, end}
}

// Store is a pgxpool backed event store.
type Store struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// New opens a pool on dsn and pings it.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	s := &Store{pool: pool, log: logger.Get().Named("postgres")}
	s.log.Info(ctx, "postgres event store ready", logger.Int("max_conns", int(pool.Config().MaxConns)))
	return s, nil
}

// Append inserts events in one batch; ids already present are skipped and
// left out of the returned slice.
func (s *Store) Append(ctx context.Context, events []model.TransitionEvent) (added []model.TransitionEvent, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeName, "append", msSince(start), err) }()
	if len(events) == 0 {
		return nil, nil
	}

	b := &pgx.Batch{}
	for _, ev := range events {
		b.Queue(insertEvent, insertArgs(ev)...)
	}
	br := s.pool.SendBatch(ctx, b)
	defer br.Close()
	for _, ev := range events {
		tag, err := br.Exec()
		if err != nil {
			return added, fmt.Errorf("append transition %s: %w", ev.ID, err)
		}
		if tag.RowsAffected() > 0 {
			added = append(added, ev)
		}
	}
	return added, nil
}

// Range returns events touching company in w, ordered by date then id.
func (s *Store) Range(ctx context.Context, companyURN string, w model.Window) (out []model.TransitionEvent, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeName, "range", msSince(start), err) }()

	rows, err := s.pool.Query(ctx, selectRange, rangeArgs(companyURN, w)...)
	if err != nil {
		return nil, fmt.Errorf("range transitions: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, fmt.Errorf("scan transitions: %w", err)
	}
	out = make([]model.TransitionEvent, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.event())
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM transition_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transitions: %w", err)
	}
	return n, nil
}

// Close closes the pool.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
