package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// UserRepository performs user lookups and inserts.
type UserRepository struct {
	q Querier
}

// FindByName returns the user with the given name, or ErrNotFound.
func (r *UserRepository) FindByName(ctx context.Context, name string) (model.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, counterparty_id, name FROM users WHERE name = ?`, name)

	var (
		user         model.User
		rawID, rawCp string
	)
	err := row.Scan(&rawID, &rawCp, &user.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scanning user: %w", err)
	}

	if user.ID, err = uuid.Parse(rawID); err != nil {
		return model.User{}, fmt.Errorf("parsing user id: %w", err)
	}
	if user.CounterpartyID, err = uuid.Parse(rawCp); err != nil {
		return model.User{}, fmt.Errorf("parsing user counterparty id: %w", err)
	}
	return user, nil
}

// Add inserts a user together with their own counterparty and returns it.
func (r *UserRepository) Add(ctx context.Context, name string) (model.User, error) {
	user := model.User{
		ID:             uuid.New(),
		CounterpartyID: uuid.New(),
		Name:           name,
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO counterparties (id, owner_id, name) VALUES (?, ?, ?)`,
		user.CounterpartyID.String(), user.ID.String(), name)
	if err != nil {
		return model.User{}, fmt.Errorf("inserting user counterparty: %w", err)
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO users (id, counterparty_id, name) VALUES (?, ?, ?)`,
		user.ID.String(), user.CounterpartyID.String(), name)
	if err != nil {
		return model.User{}, fmt.Errorf("inserting user %q: %w", name, err)
	}
	return user, nil
}
