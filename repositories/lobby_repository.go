package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
)

var (
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyConflict = errors.New("lobby number already exists in this round")
)

type LobbyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)
	// GetForUpdate locks the lobby row; report submission and confirmation serialize on it.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Lobby, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Lobby, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LobbyStatus) error
	CountNotInStatus(ctx context.Context, exec SQLExecutor, roundID int, status models.LobbyStatus) (int, error)
}

type postgresLobbyRepository struct {
	db *sql.DB
}

func NewPostgresLobbyRepository(db *sql.DB) LobbyRepository {
	return &postgresLobbyRepository{db: db}
}

const lobbyColumns = `id, round_id, tournament_id, lobby_number, status, created_at`

func scanLobby(row rowScanner) (*models.Lobby, error) {
	lobby := &models.Lobby{}
	err := row.Scan(&lobby.ID, &lobby.RoundID, &lobby.TournamentID, &lobby.LobbyNumber, &lobby.Status, &lobby.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to scan lobby: %w", err)
	}
	return lobby, nil
}

func (r *postgresLobbyRepository) Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error {
	query := `
		INSERT INTO lobbies (round_id, tournament_id, lobby_number, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		lobby.RoundID, lobby.TournamentID, lobby.LobbyNumber, lobby.Status,
	).Scan(&lobby.ID, &lobby.CreatedAt)
	if err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrLobbyConflict
		}
		return fmt.Errorf("failed to create lobby %d: %w", lobby.LobbyNumber, err)
	}
	return nil
}

func (r *postgresLobbyRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1`
	return scanLobby(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresLobbyRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1 FOR UPDATE`
	return scanLobby(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresLobbyRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Lobby, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}
	defer rows.Close()

	lobbies := make([]*models.Lobby, 0)
	for rows.Next() {
		lobby, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		lobbies = append(lobbies, lobby)
	}
	return lobbies, rows.Err()
}

func (r *postgresLobbyRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE round_id = $1 ORDER BY lobby_number ASC`
	return r.list(ctx, exec, query, roundID)
}

func (r *postgresLobbyRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE tournament_id = $1 ORDER BY round_id ASC, lobby_number ASC`
	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresLobbyRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LobbyStatus) error {
	query := `UPDATE lobbies SET status = $1 WHERE id = $2`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update lobby %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}

func (r *postgresLobbyRepository) CountNotInStatus(ctx context.Context, exec SQLExecutor, roundID int, status models.LobbyStatus) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM lobbies WHERE round_id = $1 AND status <> $2`
	if err := getExecutor(r.db, exec).QueryRowContext(ctx, query, roundID, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count lobbies of round %d: %w", roundID, err)
	}
	return n, nil
}
