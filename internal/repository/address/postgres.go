package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Columns is the select list matching ScanRow.
const Columns = `id::text, customer_id::text, house_colony, landmark, city, state, pincode, country, created_at`

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log)}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	created, err := Insert(ctx, r.pool, a.CustomerID, a)
	if err != nil {
		r.logger.Debug("address repo: create failed", zap.String("customer_id", a.CustomerID), zap.Error(err))
		return nil, mapError(err)
	}
	r.logger.Info("address repo: created", zap.String("id", created.ID), zap.String("customer_id", created.CustomerID))
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	a, err := ScanRow(r.pool.QueryRow(ctx, `SELECT `+Columns+` FROM addresses WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *postgresRepo) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if customerID == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+Columns+` FROM addresses ORDER BY seq`)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+Columns+` FROM addresses WHERE customer_id = $1 ORDER BY seq`, customerID)
	}
	if err != nil {
		r.logger.Error("address repo: list failed", zap.Error(err))
		return nil, err
	}
	return CollectRows(rows)
}

func (r *postgresRepo) Update(ctx context.Context, id string, ch Changes) (*domain.Address, error) {
	sets, args := changeSet(ch)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE addresses SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), Columns)
	a, err := ScanRow(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, mapError(err)
	}
	r.logger.Info("address repo: updated", zap.String("id", id))
	return a, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("address not found")
	}
	r.logger.Info("address repo: deleted", zap.String("id", id))
	return nil
}

// Insert stores a under customerID and returns the stored row.
func Insert(ctx context.Context, q Querier, customerID string, a domain.Address) (*domain.Address, error) {
	const stmt = `
INSERT INTO addresses (customer_id, house_colony, landmark, city, state, pincode, country)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE(NULLIF($7, ''), 'India'))
RETURNING ` + Columns
	return ScanRow(q.QueryRow(ctx, stmt, customerID, a.HouseColony, a.Landmark, a.City, a.State, a.Pincode, a.Country))
}

// ScanRow scans one row selected with Columns.
func ScanRow(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(&a.ID, &a.CustomerID, &a.HouseColony, &a.Landmark, &a.City, &a.State, &a.Pincode, &a.Country, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CollectRows scans and closes rows selected with Columns.
func CollectRows(rows pgx.Rows) ([]domain.Address, error) {
	defer rows.Close()
	out := []domain.Address{}
	for rows.Next() {
		a, err := ScanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func changeSet(ch Changes) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if v, ok := ch.HouseColony.Get(); ok {
		add("house_colony", v)
	}
	if ch.Landmark.Set {
		if v, ok := ch.Landmark.Get(); ok {
			add("landmark", v)
		} else {
			add("landmark", nil)
		}
	}
	if v, ok := ch.City.Get(); ok {
		add("city", v)
	}
	if v, ok := ch.State.Get(); ok {
		add("state", v)
	}
	if v, ok := ch.Pincode.Get(); ok {
		add("pincode", v)
	}
	if v, ok := ch.Country.Get(); ok {
		add("country", v)
	}
	return sets, args
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("address not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return domain.NotFound("customer not found")
		case "22P02":
			return domain.NotFound("address not found")
		}
	}
	return err
}
