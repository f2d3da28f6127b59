package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

// lobbyConfirmer applies final placements to a lobby. Consensus and dispute
// resolution both end here.
type lobbyConfirmer struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	lobbyRepo      repositories.LobbyRepository
	lobbyTeamRepo  repositories.LobbyTeamRepository
	reportRepo     repositories.ScoreReportRepository
	disputeRepo    repositories.DisputeRepository
	advancement    AdvancementService
	logger         *slog.Logger
}

// validatePlacements checks that every entry names a real (non-bye) seat of the lobby
// and carries a placement >= 1. Omitted seats and repeated placements are accepted.
func validatePlacements(entries []models.Placement, seats []models.LobbyTeam) error {
	if len(entries) == 0 {
		return ErrEmptyPlacements
	}
	realSeats := make(map[int]bool, len(seats))
	for _, seat := range seats {
		if !seat.IsBye {
			realSeats[seat.ID] = true
		}
	}
	for _, e := range entries {
		if !realSeats[e.LobbyTeamID] {
			return fmt.Errorf("%w (lobby_team_id %d)", ErrUnknownLobbyTeam, e.LobbyTeamID)
		}
		if e.Placement < 1 {
			return fmt.Errorf("%w (lobby_team_id %d, placement %d)", ErrInvalidPlacement, e.LobbyTeamID, e.Placement)
		}
	}
	return nil
}

// closeOpenDisputes resolves whatever disputes an admin decision leaves OPEN on the lobby.
func (c *lobbyConfirmer) closeOpenDisputes(ctx context.Context, tx repositories.SQLExecutor, lobbyID, adminID int, resolution string, at time.Time) error {
	closed, err := c.disputeRepo.ResolveOpenForLobby(ctx, tx, lobbyID, adminID, resolution, at)
	if err != nil {
		return err
	}
	if closed > 0 {
		c.logger.InfoContext(ctx, "open disputes closed by admin confirmation",
			slog.Int("lobby_id", lobbyID),
			slog.Int("admin_id", adminID),
			slog.Int64("disputes", closed))
	}
	return nil
}

// confirm must be called with the lobby row locked by tx.
func (c *lobbyConfirmer) confirm(ctx context.Context, tx repositories.SQLExecutor, lobby *models.Lobby, entries []models.Placement) error {
	if lobby.Status == models.LobbyStatusResultsConfirmed {
		return ErrLobbyAlreadyConfirmed
	}

	tournament, err := c.tournamentRepo.GetByID(ctx, tx, lobby.TournamentID)
	if err != nil {
		return mapRepoError(err)
	}

	for _, e := range entries {
		isAdvancer := e.Placement <= tournament.AdvancersPerLobby
		if err := c.lobbyTeamRepo.UpdatePlacement(ctx, tx, e.LobbyTeamID, e.Placement, isAdvancer); err != nil {
			return mapRepoError(err)
		}
	}

	if _, err := c.reportRepo.ConfirmAllForLobby(ctx, tx, lobby.ID); err != nil {
		return err
	}
	if err := c.lobbyRepo.UpdateStatus(ctx, tx, lobby.ID, models.LobbyStatusResultsConfirmed); err != nil {
		return mapRepoError(err)
	}
	lobby.Status = models.LobbyStatusResultsConfirmed

	round, err := c.roundRepo.AddSettled(ctx, tx, lobby.RoundID, 1)
	if err != nil {
		return mapRepoError(err)
	}

	c.logger.InfoContext(ctx, "lobby results confirmed",
		slog.Int("tournament_id", lobby.TournamentID),
		slog.Int("lobby_id", lobby.ID),
		slog.Int("round_number", round.RoundNumber),
		slog.Int("settled_lobbies", round.SettledLobbies),
		slog.Int("lobby_count", round.LobbyCount))

	if err := c.advancement.AdvanceInTx(ctx, tx, lobby.ID); err != nil {
		return fmt.Errorf("failed to advance teams from lobby %d: %w", lobby.ID, err)
	}
	if _, err := c.advancement.CheckCompletionInTx(ctx, tx, lobby.TournamentID); err != nil {
		return fmt.Errorf("failed to check completion of tournament %d: %w", lobby.TournamentID, err)
	}
	return nil
}
