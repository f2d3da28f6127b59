package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrRoundConflict = errors.New("round number already exists for this tournament")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.Round, error)
	GetLast(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Round, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error
	// AddSettled bumps the settled lobby counter and returns the updated round.
	// The UPDATE row-locks the round, serializing sibling lobby confirmations.
	AddSettled(ctx context.Context, exec SQLExecutor, id int, delta int) (*models.Round, error)
	// DeleteByTournament removes all rounds; lobbies, seats, reports and disputes cascade.
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

const roundColumns = `id, tournament_id, round_number, name, status, lobby_count, settled_lobbies, created_at`

func scanRound(row rowScanner) (*models.Round, error) {
	round := &models.Round{}
	err := row.Scan(
		&round.ID, &round.TournamentID, &round.RoundNumber, &round.Name,
		&round.Status, &round.LobbyCount, &round.SettledLobbies, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return round, nil
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO tournament_rounds (tournament_id, round_number, name, status, lobby_count, settled_lobbies)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		round.TournamentID, round.RoundNumber, round.Name, round.Status, round.LobbyCount, round.SettledLobbies,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrRoundConflict
		}
		return fmt.Errorf("failed to create round %d: %w", round.RoundNumber, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM tournament_rounds WHERE id = $1`
	return scanRound(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM tournament_rounds WHERE tournament_id = $1 AND round_number = $2`
	return scanRound(getExecutor(r.db, exec).QueryRowContext(ctx, query, tournamentID, roundNumber))
}

func (r *postgresRoundRepository) GetLast(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM tournament_rounds WHERE tournament_id = $1 ORDER BY round_number DESC LIMIT 1`
	return scanRound(getExecutor(r.db, exec).QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM tournament_rounds WHERE tournament_id = $1 ORDER BY round_number ASC`
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error {
	query := `UPDATE tournament_rounds SET status = $1 WHERE id = $2`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update round %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) AddSettled(ctx context.Context, exec SQLExecutor, id int, delta int) (*models.Round, error) {
	query := `
		UPDATE tournament_rounds
		SET settled_lobbies = settled_lobbies + $1
		WHERE id = $2
		RETURNING ` + roundColumns
	return scanRound(getExecutor(r.db, exec).QueryRowContext(ctx, query, delta, id))
}

func (r *postgresRoundRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM tournament_rounds WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rounds for tournament %d: %w", tournamentID, err)
	}
	return result.RowsAffected()
}
