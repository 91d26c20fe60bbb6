package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"calbook-service/internal/storage"
)

// Storage maps the partition/sort-key contract onto a single relational
// table. The conditional insert uses the (pk, sk) primary key: INSERT ... ON
// CONFLICT DO NOTHING with zero rows affected means the slot was taken, so
// no compensation path is needed at this layer beyond what the service
// already does for the non-transactional delete+insert pair.
type Storage struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS calendar_items (
	pk   TEXT NOT NULL,
	sk   TEXT NOT NULL,
	item JSONB NOT NULL,
	PRIMARY KEY (pk, sk)
);
`

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Get(ctx context.Context, pk, sk string) ([]byte, error) {
	const op = "storage.postgres.Get"

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT item FROM calendar_items WHERE pk=$1 AND sk=$2`, pk, sk,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Put(ctx context.Context, pk, sk string, value []byte, cond storage.PutCondition) error {
	const op = "storage.postgres.Put"

	if cond == storage.CondIfAbsent {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO calendar_items (pk, sk, item)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			pk, sk, value,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			return fmt.Errorf("%s: %w", op, storage.ErrConditionFailed)
		}

		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_items (pk, sk, item)
		VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk)
		DO UPDATE SET item = EXCLUDED.item`,
		pk, sk, value,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, pk, sk string) error {
	const op = "storage.postgres.Delete"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM calendar_items WHERE pk=$1 AND sk=$2`, pk, sk)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]storage.Record, error) {
	const op = "storage.postgres.QueryPrefix"

	// Sort keys are '#'-separated ASCII, so a lexicographic window is an
	// exact prefix match.
	records, err := s.query(ctx, pk, skPrefix, skPrefix+"\xff")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) QueryRange(ctx context.Context, pk, skFrom, skTo string) ([]storage.Record, error) {
	const op = "storage.postgres.QueryRange"

	records, err := s.query(ctx, pk, skFrom, skTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) query(ctx context.Context, pk, skFrom, skTo string) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sk, item FROM calendar_items
		WHERE pk=$1 AND sk >= $2 AND sk <= $3
		ORDER BY sk ASC`,
		pk, skFrom, skTo,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]storage.Record, 0)
	for rows.Next() {
		var rec storage.Record
		if err := rows.Scan(&rec.SK, &rec.Value); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}
