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
	ErrScoreReportConflict    = errors.New("team already reported results for this lobby")
	ErrScoreReportInvalidSeat = errors.New("score entry references an unknown lobby team")
)

type ScoreReportRepository interface {
	// Create inserts the report and its entries. Must run inside a transaction.
	Create(ctx context.Context, exec SQLExecutor, report *models.ScoreReport) error
	ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int, unconfirmedOnly bool) ([]*models.ScoreReport, error)
	ExistsForTeam(ctx context.Context, exec SQLExecutor, lobbyID, teamID int) (bool, error)
	ConfirmAllForLobby(ctx context.Context, exec SQLExecutor, lobbyID int) (int64, error)
	// CountByTournament returns report counts keyed by lobby id.
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error)
}

type postgresScoreReportRepository struct {
	db *sql.DB
}

func NewPostgresScoreReportRepository(db *sql.DB) ScoreReportRepository {
	return &postgresScoreReportRepository{db: db}
}

func (r *postgresScoreReportRepository) Create(ctx context.Context, exec SQLExecutor, report *models.ScoreReport) error {
	executor := getExecutor(r.db, exec)

	query := `
		INSERT INTO score_reports (lobby_id, reporter_id, reported_by_team_id, is_confirmed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		report.LobbyID, report.ReporterID, report.ReportedByTeamID, report.IsConfirmed,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrScoreReportConflict
		}
		return fmt.Errorf("failed to create score report for lobby %d: %w", report.LobbyID, err)
	}

	if len(report.Entries) == 0 {
		return nil
	}

	seatIDs := make([]int64, len(report.Entries))
	placements := make([]int64, len(report.Entries))
	for i, e := range report.Entries {
		seatIDs[i] = int64(e.LobbyTeamID)
		placements[i] = int64(e.Placement)
	}

	entryQuery := `
		INSERT INTO score_report_entries (report_id, lobby_team_id, placement)
		SELECT $1, s.lobby_team_id, s.placement
		FROM unnest($2::int[], $3::int[]) WITH ORDINALITY AS s(lobby_team_id, placement, ord)
		ORDER BY s.ord
		RETURNING id`
	rows, err := executor.QueryContext(ctx, entryQuery, report.ID, pq.Array(seatIDs), pq.Array(placements))
	if err != nil {
		if _, ok := pqConstraint(err, pqForeignKeyViolation); ok {
			return ErrScoreReportInvalidSeat
		}
		return fmt.Errorf("failed to create entries for score report %d: %w", report.ID, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&report.Entries[i].ID); err != nil {
			return fmt.Errorf("failed to scan score entry id: %w", err)
		}
		report.Entries[i].ReportID = report.ID
		i++
	}
	if err := rows.Err(); err != nil {
		if _, ok := pqConstraint(err, pqForeignKeyViolation); ok {
			return ErrScoreReportInvalidSeat
		}
		return fmt.Errorf("failed to create entries for score report %d: %w", report.ID, err)
	}
	return nil
}

func (r *postgresScoreReportRepository) ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int, unconfirmedOnly bool) ([]*models.ScoreReport, error) {
	executor := getExecutor(r.db, exec)

	query := `
		SELECT id, lobby_id, reporter_id, reported_by_team_id, is_confirmed, created_at
		FROM score_reports
		WHERE lobby_id = $1 AND ($2 = FALSE OR is_confirmed = FALSE)
		ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query, lobbyID, unconfirmedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list score reports of lobby %d: %w", lobbyID, err)
	}
	defer rows.Close()

	reports := make([]*models.ScoreReport, 0)
	byID := make(map[int]*models.ScoreReport)
	ids := make([]int64, 0)
	for rows.Next() {
		rep := &models.ScoreReport{Entries: []models.ScoreReportEntry{}}
		if err := rows.Scan(&rep.ID, &rep.LobbyID, &rep.ReporterID, &rep.ReportedByTeamID, &rep.IsConfirmed, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score report: %w", err)
		}
		reports = append(reports, rep)
		byID[rep.ID] = rep
		ids = append(ids, int64(rep.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score reports: %w", err)
	}
	if len(ids) == 0 {
		return reports, nil
	}

	entryQuery := `
		SELECT id, report_id, lobby_team_id, placement
		FROM score_report_entries
		WHERE report_id = ANY($1)
		ORDER BY report_id ASC, id ASC`
	entryRows, err := executor.QueryContext(ctx, entryQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list score entries of lobby %d: %w", lobbyID, err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var e models.ScoreReportEntry
		if err := entryRows.Scan(&e.ID, &e.ReportID, &e.LobbyTeamID, &e.Placement); err != nil {
			return nil, fmt.Errorf("failed to scan score entry: %w", err)
		}
		if rep, ok := byID[e.ReportID]; ok {
			rep.Entries = append(rep.Entries, e)
		}
	}
	return reports, entryRows.Err()
}

func (r *postgresScoreReportRepository) ExistsForTeam(ctx context.Context, exec SQLExecutor, lobbyID, teamID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM score_reports WHERE lobby_id = $1 AND reported_by_team_id = $2)`
	if err := getExecutor(r.db, exec).QueryRowContext(ctx, query, lobbyID, teamID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check report of team %d in lobby %d: %w", teamID, lobbyID, err)
	}
	return exists, nil
}

func (r *postgresScoreReportRepository) ConfirmAllForLobby(ctx context.Context, exec SQLExecutor, lobbyID int) (int64, error) {
	query := `UPDATE score_reports SET is_confirmed = TRUE WHERE lobby_id = $1 AND is_confirmed = FALSE`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, lobbyID)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm score reports of lobby %d: %w", lobbyID, err)
	}
	return result.RowsAffected()
}

func (r *postgresScoreReportRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error) {
	query := `
		SELECT sr.lobby_id, COUNT(*)
		FROM score_reports sr
		JOIN lobbies l ON l.id = sr.lobby_id
		WHERE l.tournament_id = $1
		GROUP BY sr.lobby_id`
	return countByLobby(ctx, getExecutor(r.db, exec), query, tournamentID)
}

func countByLobby(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (map[int]int, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count by lobby: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var lobbyID, n int
		if err := rows.Scan(&lobbyID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan lobby count: %w", err)
		}
		counts[lobbyID] = n
	}
	return counts, rows.Err()
}
