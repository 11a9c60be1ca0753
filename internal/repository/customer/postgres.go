package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	addressrepo "customer-accounts/internal/repository/address"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const customerColumns = `id::text, first_name, last_name, email, phone, password_hash, created_at`

// Aggregate reads use one snapshot so customer fields and addresses always
// come from the same committed state.
var snapshotRead = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log)}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		const q = `
INSERT INTO customers (first_name, last_name, email, phone, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns
		created, err := scanCustomer(tx.QueryRow(ctx, q, c.FirstName, c.LastName, strings.ToLower(c.Email), c.Phone, c.PasswordHash))
		if err != nil {
			return err
		}
		created.Addresses, err = insertAddresses(ctx, tx, created.ID, c.Addresses)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		r.logger.Debug("customer repo: create failed", zap.Error(err))
		return nil, mapError(err)
	}
	r.logger.Info("customer repo: created", zap.String("id", out.ID), zap.Int("addresses", len(out.Addresses)))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = lower($1)`, email)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := r.inTx(ctx, snapshotRead, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY seq`)
		if err != nil {
			return err
		}
		index := map[string]int{}
		for rows.Next() {
			c, err := scanCustomer(rows)
			if err != nil {
				rows.Close()
				return err
			}
			c.Addresses = []domain.Address{}
			index[c.ID] = len(out)
			out = append(out, *c)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		addrRows, err := tx.Query(ctx, `SELECT `+addressrepo.Columns+` FROM addresses ORDER BY seq`)
		if err != nil {
			return err
		}
		addresses, err := addressrepo.CollectRows(addrRows)
		if err != nil {
			return err
		}
		for _, a := range addresses {
			if i, ok := index[a.CustomerID]; ok {
				out[i].Addresses = append(out[i].Addresses, a)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("customer repo: list failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, ch Changes) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id::text FROM customers WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return err
		}

		if sets, args := changeSet(ch); len(sets) > 0 {
			args = append(args, id)
			q := fmt.Sprintf(`UPDATE customers SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
			if _, err := tx.Exec(ctx, q, args...); err != nil {
				return err
			}
		}

		if ch.Addresses.Set {
			if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE customer_id = $1`, id); err != nil {
				return err
			}
			if _, err := insertAddresses(ctx, tx, id, ch.Addresses.Value); err != nil {
				return err
			}
		}

		c, err := fetch(ctx, tx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		r.logger.Debug("customer repo: update failed", zap.String("id", id), zap.Error(err))
		return nil, mapError(err)
	}
	r.logger.Info("customer repo: updated",
		zap.String("id", id),
		zap.Bool("password_changed", ch.PasswordHash.Set),
		zap.Bool("addresses_replaced", ch.Addresses.Set),
	)
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE customer_id = $1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return mapError(err)
	}
	r.logger.Info("customer repo: deleted", zap.String("id", id))
	return nil
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.inTx(ctx, snapshotRead, func(tx pgx.Tx) error {
		c, err := fetch(ctx, tx, q, arg)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *postgresRepo) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func fetch(ctx context.Context, tx pgx.Tx, q string, arg string) (*domain.Customer, error) {
	c, err := scanCustomer(tx.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT `+addressrepo.Columns+` FROM addresses WHERE customer_id = $1 ORDER BY seq`, c.ID)
	if err != nil {
		return nil, err
	}
	c.Addresses, err = addressrepo.CollectRows(rows)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func insertAddresses(ctx context.Context, tx pgx.Tx, customerID string, in []domain.Address) ([]domain.Address, error) {
	out := make([]domain.Address, 0, len(in))
	for _, a := range in {
		created, err := addressrepo.Insert(ctx, tx, customerID, a)
		if err != nil {
			return nil, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
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
	if v, ok := ch.FirstName.Get(); ok {
		add("first_name", v)
	}
	if v, ok := ch.LastName.Get(); ok {
		add("last_name", v)
	}
	if v, ok := ch.Email.Get(); ok {
		add("email", strings.ToLower(v))
	}
	if v, ok := ch.Phone.Get(); ok {
		add("phone", v)
	}
	if v, ok := ch.PasswordHash.Get(); ok {
		add("password_hash", v)
	}
	return sets, args
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("customer not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch pgErr.ConstraintName {
			case "customers_email_key":
				return domain.Conflict("customer with this email already exists")
			case "customers_phone_key":
				return domain.Conflict("customer with this phone already exists")
			}
			return domain.Conflict("customer already exists")
		case "23503", "22P02":
			return domain.NotFound("customer not found")
		}
	}
	return err
}
