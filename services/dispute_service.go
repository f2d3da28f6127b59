package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

type ResolveDisputeInput struct {
	DisputeID  int
	AdminID    int
	Resolution string
	Entries    []models.Placement
}

// DisputeService is the admin override path around score consensus.
type DisputeService interface {
	GetDispute(ctx context.Context, disputeID int) (*models.ScoreDispute, error)
	ResolveDispute(ctx context.Context, input ResolveDisputeInput) error
	DismissDispute(ctx context.Context, disputeID, adminID int, reason string) error
}

type disputeService struct {
	transactor  repositories.Transactor
	disputeRepo repositories.DisputeRepository
	lobbyRepo   repositories.LobbyRepository
	seatRepo    repositories.LobbyTeamRepository
	confirmer   *lobbyConfirmer
	now         func() time.Time
	logger      *slog.Logger
}

func NewDisputeService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	lobbyRepo repositories.LobbyRepository,
	seatRepo repositories.LobbyTeamRepository,
	reportRepo repositories.ScoreReportRepository,
	disputeRepo repositories.DisputeRepository,
	advancement AdvancementService,
	logger *slog.Logger,
) DisputeService {
	return &disputeService{
		transactor:  transactor,
		disputeRepo: disputeRepo,
		lobbyRepo:   lobbyRepo,
		seatRepo:    seatRepo,
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

func (s *disputeService) GetDispute(ctx context.Context, disputeID int) (*models.ScoreDispute, error) {
	dispute, err := s.disputeRepo.GetByID(ctx, nil, disputeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return dispute, nil
}

func (s *disputeService) ResolveDispute(ctx context.Context, input ResolveDisputeInput) error {
	resolution := strings.TrimSpace(input.Resolution)
	if resolution == "" {
		return ErrEmptyResolution
	}

	return s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		dispute, err := s.lockOpenDispute(ctx, tx, input.DisputeID)
		if err != nil {
			return err
		}

		lobby, err := s.lobbyRepo.GetForUpdate(ctx, tx, dispute.LobbyID)
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

		resolvedAt := s.now().UTC()
		if err := s.disputeRepo.UpdateResolution(ctx, tx, dispute.ID, models.DisputeStatusResolved,
			input.AdminID, &resolution, resolvedAt); err != nil {
			return mapRepoError(err)
		}
		// Later disputes on the same lobby are settled by the same decision.
		if err := s.confirmer.closeOpenDisputes(ctx, tx, lobby.ID, input.AdminID, resolution, resolvedAt); err != nil {
			return err
		}

		if err := s.confirmer.confirm(ctx, tx, lobby, input.Entries); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "dispute resolved",
			slog.Int("dispute_id", dispute.ID),
			slog.Int("lobby_id", lobby.ID),
			slog.Int("admin_id", input.AdminID))
		return nil
	})
}

func (s *disputeService) DismissDispute(ctx context.Context, disputeID, adminID int, reason string) error {
	return s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		dispute, err := s.lockOpenDispute(ctx, tx, disputeID)
		if err != nil {
			return err
		}

		reason = strings.TrimSpace(reason)
		if err := s.disputeRepo.UpdateResolution(ctx, tx, dispute.ID, models.DisputeStatusDismissed,
			adminID, &reason, s.now().UTC()); err != nil {
			return mapRepoError(err)
		}

		s.logger.InfoContext(ctx, "dispute dismissed",
			slog.Int("dispute_id", dispute.ID),
			slog.Int("lobby_id", dispute.LobbyID),
			slog.Int("admin_id", adminID))
		return nil
	})
}

func (s *disputeService) lockOpenDispute(ctx context.Context, tx repositories.SQLExecutor, disputeID int) (*models.ScoreDispute, error) {
	dispute, err := s.disputeRepo.GetForUpdate(ctx, tx, disputeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if dispute.Status != models.DisputeStatusOpen {
		return nil, ErrDisputeNotOpen
	}
	return dispute, nil
}
