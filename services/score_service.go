package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

const adminConfirmResolution = "Results confirmed by admin"

type SubmitScoreReportInput struct {
	LobbyID         int
	ReporterID      int
	ReportingTeamID *int
	Entries         []models.Placement
}

// ScoreService collects score reports and confirms a lobby once reports agree.
type ScoreService interface {
	SubmitScoreReport(ctx context.Context, input SubmitScoreReportInput) (models.SubmitResult, error)
	// AdminConfirmResults applies admin placements and resolves the lobby's OPEN disputes.
	AdminConfirmResults(ctx context.Context, lobbyID, adminID int, entries []models.Placement) error
	// ResolveReportingTeam returns the caller's accepted team seated in the lobby, or nil.
	ResolveReportingTeam(ctx context.Context, lobbyID, userID int) (*int, error)
}

type scoreService struct {
	transactor  repositories.Transactor
	lobbyRepo   repositories.LobbyRepository
	seatRepo    repositories.LobbyTeamRepository
	reportRepo  repositories.ScoreReportRepository
	disputeRepo repositories.DisputeRepository
	memberRepo  repositories.TeamMemberRepository
	confirmer   *lobbyConfirmer
	now         func() time.Time
	logger      *slog.Logger
}

func NewScoreService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	lobbyRepo repositories.LobbyRepository,
	seatRepo repositories.LobbyTeamRepository,
	reportRepo repositories.ScoreReportRepository,
	disputeRepo repositories.DisputeRepository,
	memberRepo repositories.TeamMemberRepository,
	advancement AdvancementService,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		transactor:  transactor,
		lobbyRepo:   lobbyRepo,
		seatRepo:    seatRepo,
		reportRepo:  reportRepo,
		disputeRepo: disputeRepo,
		memberRepo:  memberRepo,
		confirmer: &lobbyConfirmer{
			tournamentRepo: tournamentRepo,
			roundRepo:      roundRepo,
			lobbyRepo:      lobbyRepo,
			lobbyTeamRepo:  seatRepo,
			reportRepo:     reportRepo,
			disputeRepo:    disputeRepo,
			advancement:    advancement,
			logger:         logger,
		},
		now:    time.Now,
		logger: logger,
	}
}

func (s *scoreService) SubmitScoreReport(ctx context.Context, input SubmitScoreReportInput) (models.SubmitResult, error) {
	var result models.SubmitResult

	err := s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetForUpdate(ctx, tx, input.LobbyID)
		if err != nil {
			return mapRepoError(err)
		}
		if lobby.Status == models.LobbyStatusResultsConfirmed {
			return ErrLobbyAlreadyConfirmed
		}

		seats, err := s.seatRepo.ListByLobby(ctx, tx, lobby.ID)
		if err != nil {
			return err
		}
		if err := validatePlacements(input.Entries, seats); err != nil {
			return err
		}

		if input.ReportingTeamID != nil {
			exists, err := s.reportRepo.ExistsForTeam(ctx, tx, lobby.ID, *input.ReportingTeamID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateTeamReport
			}
		}

		report := &models.ScoreReport{
			LobbyID:          lobby.ID,
			ReporterID:       input.ReporterID,
			ReportedByTeamID: input.ReportingTeamID,
			Entries:          make([]models.ScoreReportEntry, len(input.Entries)),
		}
		for i, e := range input.Entries {
			report.Entries[i] = models.ScoreReportEntry{LobbyTeamID: e.LobbyTeamID, Placement: e.Placement}
		}
		if err := s.reportRepo.Create(ctx, tx, report); err != nil {
			return mapRepoError(err)
		}
		if err := s.lobbyRepo.UpdateStatus(ctx, tx, lobby.ID, models.LobbyStatusAwaitingResults); err != nil {
			return mapRepoError(err)
		}
		lobby.Status = models.LobbyStatusAwaitingResults

		result, err = s.checkConsensus(ctx, tx, lobby)
		return err
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (s *scoreService) checkConsensus(ctx context.Context, tx repositories.SQLExecutor, lobby *models.Lobby) (models.SubmitResult, error) {
	reports, err := s.reportRepo.ListByLobby(ctx, tx, lobby.ID, true)
	if err != nil {
		return "", err
	}
	if len(reports) < 2 {
		return models.SubmitResultSubmitted, nil
	}

	discrepancies := compareReports(reports)
	if len(discrepancies) == 0 {
		if err := s.confirmer.confirm(ctx, tx, lobby, entriesToPlacements(reports[0].Entries)); err != nil {
			return "", err
		}
		return models.SubmitResultConfirmed, nil
	}

	raisedBy := reports[0].ReporterID
	dispute := &models.ScoreDispute{
		LobbyID:    lobby.ID,
		Status:     models.DisputeStatusOpen,
		Reason:     "Score reports disagree: " + strings.Join(discrepancies, "; "),
		RaisedByID: &raisedBy,
	}
	if err := s.disputeRepo.Create(ctx, tx, dispute); err != nil {
		return "", err
	}
	if err := s.lobbyRepo.UpdateStatus(ctx, tx, lobby.ID, models.LobbyStatusDisputed); err != nil {
		return "", mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "score reports disagree, dispute raised",
		slog.Int("lobby_id", lobby.ID),
		slog.Int("dispute_id", dispute.ID),
		slog.Int("reports", len(reports)))
	return models.SubmitResultDisputed, nil
}

// compareReports checks every report against the first one. Only lobby teams present
// in both reports are compared.
func compareReports(reports []*models.ScoreReport) []string {
	ref := make(map[int]int, len(reports[0].Entries))
	for _, e := range reports[0].Entries {
		ref[e.LobbyTeamID] = e.Placement
	}

	var discrepancies []string
	for i := 1; i < len(reports); i++ {
		for _, e := range reports[i].Entries {
			want, ok := ref[e.LobbyTeamID]
			if ok && want != e.Placement {
				discrepancies = append(discrepancies,
					fmt.Sprintf("Team %d: Report 1 says #%d, Report %d says #%d", e.LobbyTeamID, want, i+1, e.Placement))
			}
		}
	}
	return discrepancies
}

func entriesToPlacements(entries []models.ScoreReportEntry) []models.Placement {
	out := make([]models.Placement, len(entries))
	for i, e := range entries {
		out[i] = models.Placement{LobbyTeamID: e.LobbyTeamID, Placement: e.Placement}
	}
	return out
}

func (s *scoreService) AdminConfirmResults(ctx context.Context, lobbyID, adminID int, entries []models.Placement) error {
	return s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetForUpdate(ctx, tx, lobbyID)
		if err != nil {
			return mapRepoError(err)
		}
		if lobby.Status == models.LobbyStatusResultsConfirmed {
			return ErrLobbyAlreadyConfirmed
		}
		seats, err := s.seatRepo.ListByLobby(ctx, tx, lobby.ID)
		if err != nil {
			return err
		}
		if err := validatePlacements(entries, seats); err != nil {
			return err
		}
		if err := s.confirmer.closeOpenDisputes(ctx, tx, lobby.ID, adminID, adminConfirmResolution, s.now().UTC()); err != nil {
			return err
		}
		return s.confirmer.confirm(ctx, tx, lobby, entries)
	})
}

func (s *scoreService) ResolveReportingTeam(ctx context.Context, lobbyID, userID int) (*int, error) {
	return s.memberRepo.FindUserTeamInLobby(ctx, nil, lobbyID, userID)
}
