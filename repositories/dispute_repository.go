package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/lobby-royale/models"
)

var ErrDisputeNotFound = errors.New("score dispute not found")

type DisputeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, dispute *models.ScoreDispute) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ScoreDispute, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.ScoreDispute, error)
	UpdateResolution(ctx context.Context, exec SQLExecutor, id int, status models.DisputeStatus, resolvedByID int, resolution *string, resolvedAt time.Time) error
	// ResolveOpenForLobby closes every OPEN dispute of the lobby as RESOLVED.
	ResolveOpenForLobby(ctx context.Context, exec SQLExecutor, lobbyID, resolvedByID int, resolution string, resolvedAt time.Time) (int64, error)
	ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.ScoreDispute, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error)
}

type postgresDisputeRepository struct {
	db *sql.DB
}

func NewPostgresDisputeRepository(db *sql.DB) DisputeRepository {
	return &postgresDisputeRepository{db: db}
}

const disputeColumns = `id, lobby_id, status, reason, resolution, raised_by_id, resolved_by_id, resolved_at, created_at`

func scanDispute(row rowScanner) (*models.ScoreDispute, error) {
	d := &models.ScoreDispute{}
	err := row.Scan(
		&d.ID, &d.LobbyID, &d.Status, &d.Reason, &d.Resolution,
		&d.RaisedByID, &d.ResolvedByID, &d.ResolvedAt, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to scan score dispute: %w", err)
	}
	return d, nil
}

func (r *postgresDisputeRepository) Create(ctx context.Context, exec SQLExecutor, dispute *models.ScoreDispute) error {
	if dispute.Status == "" {
		dispute.Status = models.DisputeStatusOpen
	}
	query := `
		INSERT INTO score_disputes (lobby_id, status, reason, raised_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		dispute.LobbyID, dispute.Status, dispute.Reason, dispute.RaisedByID,
	).Scan(&dispute.ID, &dispute.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dispute for lobby %d: %w", dispute.LobbyID, err)
	}
	return nil
}

func (r *postgresDisputeRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ScoreDispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM score_disputes WHERE id = $1`
	return scanDispute(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresDisputeRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.ScoreDispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM score_disputes WHERE id = $1 FOR UPDATE`
	return scanDispute(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresDisputeRepository) UpdateResolution(ctx context.Context, exec SQLExecutor, id int, status models.DisputeStatus, resolvedByID int, resolution *string, resolvedAt time.Time) error {
	query := `
		UPDATE score_disputes
		SET status = $1, resolved_by_id = $2, resolution = $3, resolved_at = $4
		WHERE id = $5`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, status, resolvedByID, resolution, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update dispute %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrDisputeNotFound)
}

func (r *postgresDisputeRepository) ResolveOpenForLobby(ctx context.Context, exec SQLExecutor, lobbyID, resolvedByID int, resolution string, resolvedAt time.Time) (int64, error) {
	query := `
		UPDATE score_disputes
		SET status = $1, resolved_by_id = $2, resolution = $3, resolved_at = $4
		WHERE lobby_id = $5 AND status = $6`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		models.DisputeStatusResolved, resolvedByID, resolution, resolvedAt, lobbyID, models.DisputeStatusOpen)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve open disputes of lobby %d: %w", lobbyID, err)
	}
	return result.RowsAffected()
}

func (r *postgresDisputeRepository) ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.ScoreDispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM score_disputes WHERE lobby_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes of lobby %d: %w", lobbyID, err)
	}
	defer rows.Close()

	disputes := make([]*models.ScoreDispute, 0)
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func (r *postgresDisputeRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error) {
	query := `
		SELECT d.lobby_id, COUNT(*)
		FROM score_disputes d
		JOIN lobbies l ON l.id = d.lobby_id
		WHERE l.tournament_id = $1
		GROUP BY d.lobby_id`
	return countByLobby(ctx, getExecutor(r.db, exec), query, tournamentID)
}
