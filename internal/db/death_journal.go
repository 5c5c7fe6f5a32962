package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/healthsync/internal/model"
)

// JournalEntry is one row of the death_journal table.
type JournalEntry struct {
	ID         int64
	EntityID   uint32
	EntityName string
	Event      model.LifeEvent
	Health     float64
	OccurredAt time.Time
}

// DeathJournalRepository is the append-only audit log of deaths and revivals.
type DeathJournalRepository struct {
	db *pgxpool.Pool
}

// NewDeathJournalRepository creates a new DeathJournalRepository.
func NewDeathJournalRepository(db *pgxpool.Pool) *DeathJournalRepository {
	return &DeathJournalRepository{db: db}
}

// Insert appends a single entry and returns its ID.
func (r *DeathJournalRepository) Insert(ctx context.Context, e JournalEntry) (int64, error) {
	if !e.Event.Valid() {
		return 0, fmt.Errorf("inserting journal entry for %d: unknown event %q", e.EntityID, e.Event)
	}

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO death_journal (entity_id, entity_name, event, health, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		int64(e.EntityID), e.EntityName, string(e.Event), e.Health, e.OccurredAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting journal entry for %d: %w", e.EntityID, err)
	}
	return id, nil
}

// InsertBatch appends entries with COPY.
func (r *DeathJournalRepository) InsertBatch(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{int64(e.EntityID), e.EntityName, string(e.Event), e.Health, e.OccurredAt})
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"death_journal"},
		[]string{"entity_id", "entity_name", "event", "health", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copying %d journal entries: %w", len(entries), err)
	}
	return nil
}

// ListByEntity returns the latest entries of one entity, newest first.
func (r *DeathJournalRepository) ListByEntity(ctx context.Context, entityID uint32, limit int) ([]JournalEntry, error) {
	query := `
		SELECT id, entity_id, entity_name, event, health, occurred_at
		FROM death_journal
		WHERE entity_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, int64(entityID), limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	result := make([]JournalEntry, 0, limit)
	for rows.Next() {
		var (
			e     JournalEntry
			id    int64
			event string
		)
		if err := rows.Scan(&e.ID, &id, &e.EntityName, &event, &e.Health, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.EntityID = uint32(id)
		e.Event = model.LifeEvent(event)
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal rows: %w", err)
	}

	return result, nil
}

// CountByEvent returns how many entries of the given event an entity has.
func (r *DeathJournalRepository) CountByEvent(ctx context.Context, entityID uint32, event model.LifeEvent) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM death_journal WHERE entity_id = $1 AND event = $2`,
		int64(entityID), string(event),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s entries for %d: %w", event, entityID, err)
	}
	return n, nil
}
