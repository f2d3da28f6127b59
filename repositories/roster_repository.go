package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/lib/pq"
)

var ErrTeamMemberConflict = errors.New("user is already a member of this team")

type TeamMemberRepository interface {
	// CreateBatch inserts all members of one team in a single statement.
	CreateBatch(ctx context.Context, exec SQLExecutor, teamID int, members []*models.TeamMember) error
	// FindUserTeamInLobby returns the accepted team of userID seated in lobbyID, or nil.
	FindUserTeamInLobby(ctx context.Context, exec SQLExecutor, lobbyID, userID int) (*int, error)
}

type postgresTeamMemberRepository struct {
	db *sql.DB
}

func NewPostgresTeamMemberRepository(db *sql.DB) TeamMemberRepository {
	return &postgresTeamMemberRepository{db: db}
}

func (r *postgresTeamMemberRepository) CreateBatch(ctx context.Context, exec SQLExecutor, teamID int, members []*models.TeamMember) error {
	if len(members) == 0 {
		return nil
	}

	userIDs := make([]int64, len(members))
	roles := make([]string, len(members))
	statuses := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = int64(m.UserID)
		roles[i] = string(m.Role)
		statuses[i] = string(m.Status)
	}

	query := `
		INSERT INTO team_members (team_id, user_id, role, status)
		SELECT $1, u.user_id, u.role, u.status
		FROM unnest($2::int[], $3::text[], $4::text[]) AS u(user_id, role, status)
		RETURNING id, user_id`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query,
		teamID, pq.Array(userIDs), pq.Array(roles), pq.Array(statuses))
	if err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrTeamMemberConflict
		}
		return fmt.Errorf("failed to create members for team %d: %w", teamID, err)
	}
	defer rows.Close()

	ids := make(map[int]int, len(members))
	for rows.Next() {
		var id, userID int
		if err := rows.Scan(&id, &userID); err != nil {
			return fmt.Errorf("failed to scan team member id: %w", err)
		}
		ids[userID] = id
	}
	if err := rows.Err(); err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrTeamMemberConflict
		}
		return err
	}

	for _, m := range members {
		m.TeamID = teamID
		m.ID = ids[m.UserID]
	}
	return nil
}

func (r *postgresTeamMemberRepository) FindUserTeamInLobby(ctx context.Context, exec SQLExecutor, lobbyID, userID int) (*int, error) {
	query := `
		SELECT lt.team_id
		FROM lobby_teams lt
		JOIN team_members tm ON tm.team_id = lt.team_id
		WHERE lt.lobby_id = $1 AND lt.is_bye = FALSE
		  AND tm.user_id = $2 AND tm.status = $3
		ORDER BY lt.seed ASC
		LIMIT 1`

	var teamID int
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, lobbyID, userID, models.TeamMemberAccepted).Scan(&teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team of user %d in lobby %d: %w", userID, lobbyID, err)
	}
	return &teamID, nil
}
