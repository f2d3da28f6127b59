package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

// AdvancementService promotes advancing teams once a whole round is settled and
// closes the tournament after the Grand Final. The *InTx variants join the
// caller's unit of work; the others open their own.
type AdvancementService interface {
	AdvanceTeamsToNextRound(ctx context.Context, lobbyID int) error
	AdvanceInTx(ctx context.Context, tx repositories.SQLExecutor, lobbyID int) error
	CheckTournamentCompletion(ctx context.Context, tournamentID int) (bool, error)
	CheckCompletionInTx(ctx context.Context, tx repositories.SQLExecutor, tournamentID int) (bool, error)
}

type advancementService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	lobbyRepo      repositories.LobbyRepository
	lobbyTeamRepo  repositories.LobbyTeamRepository
	logger         *slog.Logger
}

func NewAdvancementService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	lobbyRepo repositories.LobbyRepository,
	lobbyTeamRepo repositories.LobbyTeamRepository,
	logger *slog.Logger,
) AdvancementService {
	return &advancementService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		lobbyRepo:      lobbyRepo,
		lobbyTeamRepo:  lobbyTeamRepo,
		logger:         logger,
	}
}

func (s *advancementService) AdvanceTeamsToNextRound(ctx context.Context, lobbyID int) error {
	return s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		return s.AdvanceInTx(ctx, tx, lobbyID)
	})
}

func (s *advancementService) CheckTournamentCompletion(ctx context.Context, tournamentID int) (bool, error) {
	var completed bool
	err := s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		completed, err = s.CheckCompletionInTx(ctx, tx, tournamentID)
		return err
	})
	return completed, err
}

func (s *advancementService) AdvanceInTx(ctx context.Context, tx repositories.SQLExecutor, lobbyID int) error {
	lobby, err := s.lobbyRepo.GetByID(ctx, tx, lobbyID)
	if err != nil {
		return mapRepoError(err)
	}
	round, err := s.roundRepo.GetByID(ctx, tx, lobby.RoundID)
	if err != nil {
		return mapRepoError(err)
	}

	next, err := s.roundRepo.GetByNumber(ctx, tx, round.TournamentID, round.RoundNumber+1)
	if errors.Is(err, repositories.ErrRoundNotFound) {
		return nil // Grand Final
	}
	if err != nil {
		return fmt.Errorf("failed to load round %d of tournament %d: %w", round.RoundNumber+1, round.TournamentID, err)
	}

	if !round.IsSettled() {
		s.logger.DebugContext(ctx, "round not settled yet, deferring advancement",
			slog.Int("round_id", round.ID),
			slog.Int("settled_lobbies", round.SettledLobbies),
			slog.Int("lobby_count", round.LobbyCount))
		return nil
	}

	advancers, err := s.collectAdvancers(ctx, tx, round.ID)
	if err != nil {
		return err
	}

	targets, err := s.lobbyRepo.ListByRound(ctx, tx, next.ID)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("round %d of tournament %d has no lobbies", next.RoundNumber, next.TournamentID)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].LobbyNumber < targets[j].LobbyNumber })

	occupied := make(map[int]bool, len(targets))
	inserted := 0
	for i, teamID := range advancers {
		target := targets[i%len(targets)]
		occupied[target.ID] = true

		exists, err := s.lobbyTeamRepo.ExistsInLobby(ctx, tx, target.ID, teamID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.lobbyTeamRepo.Create(ctx, tx, models.NewTeamSeat(target.ID, teamID, i+1)); err != nil {
			return mapRepoError(err)
		}
		inserted++
	}

	if round.Status != models.RoundStatusCompleted {
		if err := s.roundRepo.UpdateStatus(ctx, tx, round.ID, models.RoundStatusCompleted); err != nil {
			return mapRepoError(err)
		}
	}
	if next.Status == models.RoundStatusPending {
		if err := s.roundRepo.UpdateStatus(ctx, tx, next.ID, models.RoundStatusInProgress); err != nil {
			return mapRepoError(err)
		}
		// Lobbies nobody advanced into can never report; count them as settled once.
		empty := len(targets) - len(occupied)
		if empty > 0 {
			if _, err := s.roundRepo.AddSettled(ctx, tx, next.ID, empty); err != nil {
				return mapRepoError(err)
			}
		}
	}

	if inserted > 0 {
		s.logger.InfoContext(ctx, "teams advanced to next round",
			slog.Int("tournament_id", round.TournamentID),
			slog.Int("from_round", round.RoundNumber),
			slog.Int("to_round", next.RoundNumber),
			slog.Int("teams", inserted))
	}
	return nil
}

// collectAdvancers returns advancing team ids lobby by lobby, each lobby ordered by placement.
func (s *advancementService) collectAdvancers(ctx context.Context, tx repositories.SQLExecutor, roundID int) ([]int, error) {
	lobbies, err := s.lobbyRepo.ListByRound(ctx, tx, roundID)
	if err != nil {
		return nil, err
	}
	sort.Slice(lobbies, func(i, j int) bool { return lobbies[i].LobbyNumber < lobbies[j].LobbyNumber })

	ids := make([]int, len(lobbies))
	for i, l := range lobbies {
		ids[i] = l.ID
	}
	seats, err := s.lobbyTeamRepo.ListByLobbies(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	byLobby := make(map[int][]models.LobbyTeam, len(lobbies))
	for _, seat := range seats {
		if seat.IsAdvancer && !seat.IsBye && seat.TeamID != nil {
			byLobby[seat.LobbyID] = append(byLobby[seat.LobbyID], seat)
		}
	}

	advancers := make([]int, 0, len(seats))
	for _, l := range lobbies {
		group := byLobby[l.ID]
		sort.SliceStable(group, func(i, j int) bool {
			return placementOrLast(group[i].Placement) < placementOrLast(group[j].Placement)
		})
		for _, seat := range group {
			advancers = append(advancers, *seat.TeamID)
		}
	}
	return advancers, nil
}

func placementOrLast(p *int) int {
	if p == nil {
		return 999
	}
	return *p
}

func (s *advancementService) CheckCompletionInTx(ctx context.Context, tx repositories.SQLExecutor, tournamentID int) (bool, error) {
	last, err := s.roundRepo.GetLast(ctx, tx, tournamentID)
	if errors.Is(err, repositories.ErrRoundNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	pending, err := s.lobbyRepo.CountNotInStatus(ctx, tx, last.ID, models.LobbyStatusResultsConfirmed)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	lobbies, err := s.lobbyRepo.ListByRound(ctx, tx, last.ID)
	if err != nil {
		return false, err
	}
	ids := make([]int, len(lobbies))
	for i, l := range lobbies {
		ids[i] = l.ID
	}
	seats, err := s.lobbyTeamRepo.ListByLobbies(ctx, tx, ids)
	if err != nil {
		return false, err
	}
	var winner *int
	for _, seat := range seats {
		if seat.Placement != nil && *seat.Placement == 1 && seat.TeamID != nil {
			winner = seat.TeamID
			break
		}
	}

	if err := s.tournamentRepo.UpdateWinner(ctx, tx, tournamentID, winner); err != nil {
		return false, mapRepoError(err)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); err != nil {
		return false, mapRepoError(err)
	}
	if last.Status != models.RoundStatusCompleted {
		if err := s.roundRepo.UpdateStatus(ctx, tx, last.ID, models.RoundStatusCompleted); err != nil {
			return false, mapRepoError(err)
		}
	}

	attrs := []any{slog.Int("tournament_id", tournamentID)}
	if winner != nil {
		attrs = append(attrs, slog.Int("winner_team_id", *winner))
	}
	s.logger.InfoContext(ctx, "tournament completed", attrs...)
	return true, nil
}
