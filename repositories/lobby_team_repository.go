package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/lib/pq"
)

var (
	ErrLobbyTeamNotFound    = errors.New("lobby team not found")
	ErrLobbyTeamConflict    = errors.New("team is already seated in this lobby")
	ErrLobbyTeamInvalidTeam = errors.New("lobby team references an unknown team")
	ErrLobbyTeamByeMismatch = errors.New("bye seats must not reference a team and team seats must")
)

type LobbyTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, seat *models.LobbyTeam) error
	ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]models.LobbyTeam, error)
	ListByLobbies(ctx context.Context, exec SQLExecutor, lobbyIDs []int) ([]models.LobbyTeam, error)
	// ListByTournament returns every seat of the tournament with its team loaded, ordered by lobby then seed.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.LobbyTeam, error)
	ExistsInLobby(ctx context.Context, exec SQLExecutor, lobbyID, teamID int) (bool, error)
	UpdatePlacement(ctx context.Context, exec SQLExecutor, id int, placement int, isAdvancer bool) error
}

type postgresLobbyTeamRepository struct {
	db *sql.DB
}

func NewPostgresLobbyTeamRepository(db *sql.DB) LobbyTeamRepository {
	return &postgresLobbyTeamRepository{db: db}
}

const lobbyTeamColumns = `lt.id, lt.lobby_id, lt.team_id, lt.seed, lt.placement, lt.is_advancer, lt.is_bye`

func scanLobbyTeams(rows *sql.Rows, withTeam bool) ([]models.LobbyTeam, error) {
	defer rows.Close()

	seats := make([]models.LobbyTeam, 0)
	for rows.Next() {
		var seat models.LobbyTeam
		dest := []interface{}{
			&seat.ID, &seat.LobbyID, &seat.TeamID, &seat.Seed, &seat.Placement, &seat.IsAdvancer, &seat.IsBye,
		}
		var teamName, teamTag sql.NullString
		if withTeam {
			dest = append(dest, &teamName, &teamTag)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan lobby team: %w", err)
		}
		if withTeam && seat.TeamID != nil {
			seat.Team = &models.Team{ID: *seat.TeamID, Name: teamName.String, Tag: teamTag.String}
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *postgresLobbyTeamRepository) Create(ctx context.Context, exec SQLExecutor, seat *models.LobbyTeam) error {
	query := `
		INSERT INTO lobby_teams (lobby_id, team_id, seed, placement, is_advancer, is_bye)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		seat.LobbyID, seat.TeamID, seat.Seed, seat.Placement, seat.IsAdvancer, seat.IsBye,
	).Scan(&seat.ID)
	if err == nil {
		return nil
	}
	if _, ok := pqConstraint(err, pqUniqueViolation); ok {
		return ErrLobbyTeamConflict
	}
	if c, ok := pqConstraint(err, pqForeignKeyViolation); ok && c == "lobby_teams_team_id_fkey" {
		return ErrLobbyTeamInvalidTeam
	}
	if _, ok := pqConstraint(err, pqCheckViolation); ok {
		return ErrLobbyTeamByeMismatch
	}
	return fmt.Errorf("failed to seat team in lobby %d: %w", seat.LobbyID, err)
}

func (r *postgresLobbyTeamRepository) ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]models.LobbyTeam, error) {
	query := `
		SELECT ` + lobbyTeamColumns + `, t.name, t.tag
		FROM lobby_teams lt
		LEFT JOIN teams t ON t.id = lt.team_id
		WHERE lt.lobby_id = $1
		ORDER BY lt.seed ASC, lt.id ASC`
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of lobby %d: %w", lobbyID, err)
	}
	return scanLobbyTeams(rows, true)
}

func (r *postgresLobbyTeamRepository) ListByLobbies(ctx context.Context, exec SQLExecutor, lobbyIDs []int) ([]models.LobbyTeam, error) {
	if len(lobbyIDs) == 0 {
		return []models.LobbyTeam{}, nil
	}
	ids := make([]int64, len(lobbyIDs))
	for i, id := range lobbyIDs {
		ids[i] = int64(id)
	}

	query := `
		SELECT ` + lobbyTeamColumns + `
		FROM lobby_teams lt
		WHERE lt.lobby_id = ANY($1)
		ORDER BY lt.lobby_id ASC, lt.seed ASC, lt.id ASC`
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby teams: %w", err)
	}
	return scanLobbyTeams(rows, false)
}

func (r *postgresLobbyTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.LobbyTeam, error) {
	query := `
		SELECT ` + lobbyTeamColumns + `, t.name, t.tag
		FROM lobby_teams lt
		JOIN lobbies l ON l.id = lt.lobby_id
		LEFT JOIN teams t ON t.id = lt.team_id
		WHERE l.tournament_id = $1
		ORDER BY lt.lobby_id ASC, lt.seed ASC, lt.id ASC`
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby teams of tournament %d: %w", tournamentID, err)
	}
	return scanLobbyTeams(rows, true)
}

func (r *postgresLobbyTeamRepository) ExistsInLobby(ctx context.Context, exec SQLExecutor, lobbyID, teamID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM lobby_teams WHERE lobby_id = $1 AND team_id = $2)`
	if err := getExecutor(r.db, exec).QueryRowContext(ctx, query, lobbyID, teamID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check team %d in lobby %d: %w", teamID, lobbyID, err)
	}
	return exists, nil
}

func (r *postgresLobbyTeamRepository) UpdatePlacement(ctx context.Context, exec SQLExecutor, id int, placement int, isAdvancer bool) error {
	query := `UPDATE lobby_teams SET placement = $1, is_advancer = $2 WHERE id = $3 AND is_bye = FALSE`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, placement, isAdvancer, id)
	if err != nil {
		return fmt.Errorf("failed to update placement of lobby team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLobbyTeamNotFound)
}
