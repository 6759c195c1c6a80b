package pg

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/profiles/service"
	"signal_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS profiles (
	owner_id   BIGINT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectOne       = `SELECT data FROM profiles WHERE owner_id = $1`
	selectOneLocked = `SELECT data FROM profiles WHERE owner_id = $1 FOR UPDATE`
	selectAll       = `SELECT data FROM profiles ORDER BY owner_id`
	upsert          = `INSERT INTO profiles (owner_id, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (owner_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	deleteOne = `DELETE FROM profiles WHERE owner_id = $1`
)

type Store struct {
	db *db.PgTxManager
}

func New(db *db.PgTxManager) *Store {
	return &Store{db: db}
}

// Migrate создаёт таблицу, если её нет.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Conn().Exec(ctx, createTable)
	return errors.Wrap(err, "pg.Migrate")
}

func (s *Store) Get(ctx context.Context, ownerID int64) (p *models.Profile, err error) {
	defer func() {
		if err != nil && err != service.ErrNotFound {
			err = fmt.Errorf("pg.Get: %w", err)
		}
	}()
	return scanOne(s.db.Conn().QueryRow(ctx, selectOne, ownerID))
}

func (s *Store) List(ctx context.Context) (out []*models.Profile, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.List: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, selectAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, p *models.Profile) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Save: %w", err)
		}
	}()
	return write(ctx, s.db.Conn(), p)
}

func (s *Store) Delete(ctx context.Context, ownerID int64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Delete: %w", err)
		}
	}()
	_, err = s.db.Conn().Exec(ctx, deleteOne, ownerID)
	return err
}

// Update под SELECT ... FOR UPDATE.
func (s *Store) Update(ctx context.Context, ownerID int64, fn func(p *models.Profile) error) error {
	err := s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		p, err := scanOne(tx.QueryRow(ctxTx, selectOneLocked, ownerID))
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		return write(ctxTx, tx, p)
	})
	if errors.Is(err, service.ErrNotFound) {
		return service.ErrNotFound
	}
	return errors.Wrap(err, "pg.Update")
}

func scanOne(row pgx.Row) (*models.Profile, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*models.Profile, error) {
	var p models.Profile
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	p.Normalize()
	return &p, nil
}

func write(ctx context.Context, tx db.Transaction, p *models.Profile) error {
	p.Normalize()
	data, err := sonic.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode profile")
	}
	_, err = tx.Exec(ctx, upsert, p.OwnerID, data)
	return err
}
