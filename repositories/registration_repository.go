package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
)

var (
	ErrRegistrationConflict      = errors.New("registration conflict: user or team already registered for this tournament")
	ErrRegistrationOwnerMissing  = errors.New("registration must reference a team or a user")
	ErrRegistrationTeamInvalid   = errors.New("registration team conflict or invalid")
	ErrRegistrationTournamentBad = errors.New("registration tournament conflict or invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	// ListByTournament returns registrations ordered by seed (unseeded last), then by registration time.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error)
	DeleteUserOnly(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (tournament_id, team_id, user_id, status, seed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		reg.TournamentID, reg.TeamID, reg.UserID, reg.Status, reg.Seed,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err == nil {
		return nil
	}

	if _, ok := pqConstraint(err, pqUniqueViolation); ok {
		return ErrRegistrationConflict
	}
	if c, ok := pqConstraint(err, pqForeignKeyViolation); ok {
		switch c {
		case "registrations_team_id_fkey":
			return ErrRegistrationTeamInvalid
		case "registrations_tournament_id_fkey":
			return ErrRegistrationTournamentBad
		}
	}
	if c, ok := pqConstraint(err, pqCheckViolation); ok && c == "chk_registration_owner" {
		return ErrRegistrationOwnerMissing
	}
	return fmt.Errorf("failed to create registration: %w", err)
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error) {
	query := `
		SELECT id, tournament_id, team_id, user_id, status, seed, created_at
		FROM registrations
		WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY seed ASC NULLS LAST, created_at ASC, id ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{}
		if err := rows.Scan(&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.UserID, &reg.Status, &reg.Seed, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) DeleteUserOnly(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	query := `DELETE FROM registrations WHERE tournament_id = $1 AND team_id IS NULL`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user registrations for tournament %d: %w", tournamentID, err)
	}
	return result.RowsAffected()
}
