package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPairingNotFound = fmt.Errorf("pairing %w", apperr.ErrNotFound)
)

// PairingRepository backs the pairing directory with the pairings table.
// The pairing flow itself (invites, unlinking) lives outside this service.
type PairingRepository interface {
	FindActivePairing(ctx context.Context, userID string) (*model.Pairing, error)
	Create(ctx context.Context, p *model.Pairing) error
	End(ctx context.Context, pairingID string) error
}

type pairingRepository struct {
	db *sqlx.DB
}

func NewPairingRepository(db *sqlx.DB) PairingRepository {
	return &pairingRepository{db: db}
}

// FindActivePairing returns nil without error when userID has no active pairing.
func (r *pairingRepository) FindActivePairing(ctx context.Context, userID string) (*model.Pairing, error) {
	pairing := &model.Pairing{}
	query := `SELECT * FROM pairings
	          WHERE status = $1 AND (user_a = $2 OR user_b = $2)
	          ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetContext(ctx, pairing, query, model.PairingStatusActive, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return pairing, nil
}

func (r *pairingRepository) Create(ctx context.Context, p *model.Pairing) error {
	query := `INSERT INTO pairings (id, user_a, user_b, status, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.UserA, p.UserB, p.Status, p.CreatedAt)
	return err
}

func (r *pairingRepository) End(ctx context.Context, pairingID string) error {
	query := `UPDATE pairings SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, model.PairingStatusEnded, pairingID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPairingNotFound
	}

	return nil
}
