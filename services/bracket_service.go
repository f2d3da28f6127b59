package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/lobby-royale/brackets"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"github.com/Dosada05/lobby-royale/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BracketService materializes the lobby bracket of a tournament and serves its read model.
type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int) (*brackets.Plan, error)
	GetBracket(ctx context.Context, tournamentID int) (*models.BracketView, error)
	GetLobbyDetail(ctx context.Context, lobbyID int) (*models.LobbyDetail, error)
	// ExportBracket uploads a JSON snapshot of the bracket and returns its public URL.
	ExportBracket(ctx context.Context, tournamentID int) (*storage.UploadResult, error)
}

type bracketService struct {
	transactor       repositories.Transactor
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	roundRepo        repositories.RoundRepository
	lobbyRepo        repositories.LobbyRepository
	seatRepo         repositories.LobbyTeamRepository
	reportRepo       repositories.ScoreReportRepository
	disputeRepo      repositories.DisputeRepository
	generator        brackets.BracketGenerator
	uploader         storage.FileUploader
	logger           *slog.Logger
}

// NewBracketService wires the bracket engine. uploader may be nil, which disables export.
func NewBracketService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	roundRepo repositories.RoundRepository,
	lobbyRepo repositories.LobbyRepository,
	seatRepo repositories.LobbyTeamRepository,
	reportRepo repositories.ScoreReportRepository,
	disputeRepo repositories.DisputeRepository,
	generator brackets.BracketGenerator,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		transactor:       transactor,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		roundRepo:        roundRepo,
		lobbyRepo:        lobbyRepo,
		seatRepo:         seatRepo,
		reportRepo:       reportRepo,
		disputeRepo:      disputeRepo,
		generator:        generator,
		uploader:         uploader,
		logger:           logger,
	}
}

func canGenerateBracket(status models.TournamentStatus) bool {
	return status == models.StatusRegistrationClosed || status == models.StatusInProgress
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (*brackets.Plan, error) {
	var plan *brackets.Plan

	err := s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return mapRepoError(err)
		}
		if !canGenerateBracket(tournament.Status) {
			return fmt.Errorf("%w (status %s)", ErrBracketNotAllowed, tournament.Status)
		}

		registered := models.RegistrationStatusRegistered
		regs, err := s.registrationRepo.ListByTournament(ctx, tx, tournamentID, &registered)
		if err != nil {
			return err
		}
		teams := make([]brackets.SeededTeam, 0, len(regs))
		for _, reg := range regs {
			if reg.TeamID == nil {
				continue
			}
			teams = append(teams, brackets.SeededTeam{TeamID: *reg.TeamID, Seed: len(teams) + 1})
		}
		if len(teams) < 2 {
			return fmt.Errorf("%w: need at least 2, tournament %d has %d", ErrInsufficientTeams, tournamentID, len(teams))
		}

		bracket, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			TournamentID:      tournamentID,
			TeamsPerLobby:     tournament.TeamsPerLobby,
			AdvancersPerLobby: tournament.AdvancersPerLobby,
			Teams:             teams,
		})
		if err != nil {
			return err
		}

		removed, err := s.roundRepo.DeleteByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.logger.WarnContext(ctx, "regenerating bracket, previous rounds removed",
				slog.Int("tournament_id", tournamentID),
				slog.Int64("rounds", removed))
		}

		for _, br := range bracket.Rounds {
			if err := s.persistRound(ctx, tx, tournamentID, br); err != nil {
				return err
			}
		}

		if tournament.Status != models.StatusInProgress {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusInProgress); err != nil {
				return mapRepoError(err)
			}
		}
		if tournament.WinnerTeamID != nil {
			if err := s.tournamentRepo.UpdateWinner(ctx, tx, tournamentID, nil); err != nil {
				return mapRepoError(err)
			}
		}

		plan = bracket.Plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.String("generator", s.generator.GetName()),
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", plan.TotalTeams),
		slog.Int("byes", plan.ByeCount),
		slog.Int("rounds", len(plan.Rounds)))
	return plan, nil
}

func (s *bracketService) persistRound(ctx context.Context, tx repositories.SQLExecutor, tournamentID int, br brackets.BracketRound) error {
	status := models.RoundStatusPending
	if br.RoundNumber == 1 {
		status = models.RoundStatusInProgress
	}
	round := &models.Round{
		TournamentID:   tournamentID,
		RoundNumber:    br.RoundNumber,
		Name:           br.Name,
		Status:         status,
		LobbyCount:     br.LobbyCount,
		SettledLobbies: br.SettledLobbies(),
	}
	if err := s.roundRepo.Create(ctx, tx, round); err != nil {
		return mapRepoError(err)
	}

	for _, bl := range br.Lobbies {
		lobby := &models.Lobby{
			RoundID:      round.ID,
			TournamentID: tournamentID,
			LobbyNumber:  bl.LobbyNumber,
			Status:       models.LobbyStatusPending,
		}
		if err := s.lobbyRepo.Create(ctx, tx, lobby); err != nil {
			return mapRepoError(err)
		}
		for _, slot := range bl.Slots {
			seat := models.NewByeSeat(lobby.ID, slot.Seed)
			if !slot.IsBye() {
				seat = models.NewTeamSeat(lobby.ID, slot.TeamID, slot.Seed)
			}
			if err := s.seatRepo.Create(ctx, tx, seat); err != nil {
				return mapRepoError(err)
			}
		}
	}
	return nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	var (
		tournament   *models.Tournament
		rounds       []*models.Round
		lobbies      []*models.Lobby
		seats        []models.LobbyTeam
		reportCount  map[int]int
		disputeCount map[int]int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		return mapRepoError(err)
	})
	g.Go(func() error {
		var err error
		rounds, err = s.roundRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		lobbies, err = s.lobbyRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		seats, err = s.seatRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		reportCount, err = s.reportRepo.CountByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		disputeCount, err = s.disputeRepo.CountByTournament(gCtx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildBracketView(tournament, rounds, lobbies, seats, reportCount, disputeCount), nil
}

// buildBracketView orders rounds by number, lobbies by lobby number and seats by seed.
func buildBracketView(
	tournament *models.Tournament,
	rounds []*models.Round,
	lobbies []*models.Lobby,
	seats []models.LobbyTeam,
	reportCount, disputeCount map[int]int,
) *models.BracketView {
	seatsByLobby := make(map[int][]models.LobbyTeam, len(lobbies))
	for _, seat := range seats {
		seatsByLobby[seat.LobbyID] = append(seatsByLobby[seat.LobbyID], seat)
	}
	lobbiesByRound := make(map[int][]models.LobbyView, len(rounds))
	for _, l := range lobbies {
		lv := models.LobbyView{Lobby: *l, ReportCount: reportCount[l.ID], DisputeCount: disputeCount[l.ID]}
		lv.Teams = seatsByLobby[l.ID]
		if lv.Teams == nil {
			lv.Teams = []models.LobbyTeam{}
		}
		sort.SliceStable(lv.Teams, func(i, j int) bool { return lv.Teams[i].Seed < lv.Teams[j].Seed })
		lobbiesByRound[l.RoundID] = append(lobbiesByRound[l.RoundID], lv)
	}

	view := &models.BracketView{
		TournamentID: tournament.ID,
		Status:       tournament.Status,
		WinnerTeamID: tournament.WinnerTeamID,
		Rounds:       make([]models.RoundView, 0, len(rounds)),
	}
	for _, r := range rounds {
		rv := models.RoundView{Round: *r, Lobbies: lobbiesByRound[r.ID]}
		if rv.Lobbies == nil {
			rv.Lobbies = []models.LobbyView{}
		}
		sort.Slice(rv.Lobbies, func(i, j int) bool { return rv.Lobbies[i].LobbyNumber < rv.Lobbies[j].LobbyNumber })
		view.Rounds = append(view.Rounds, rv)
	}
	sort.Slice(view.Rounds, func(i, j int) bool { return view.Rounds[i].RoundNumber < view.Rounds[j].RoundNumber })
	return view
}

func (s *bracketService) GetLobbyDetail(ctx context.Context, lobbyID int) (*models.LobbyDetail, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	detail := &models.LobbyDetail{Lobby: *lobby}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		round, err := s.roundRepo.GetByID(gCtx, nil, lobby.RoundID)
		if err != nil {
			return mapRepoError(err)
		}
		detail.RoundNumber = round.RoundNumber
		detail.RoundName = round.Name
		return nil
	})
	g.Go(func() error {
		seats, err := s.seatRepo.ListByLobby(gCtx, nil, lobbyID)
		detail.Teams = seats
		return err
	})
	g.Go(func() error {
		reports, err := s.reportRepo.ListByLobby(gCtx, nil, lobbyID, false)
		if err != nil {
			return err
		}
		detail.Reports = make([]models.ScoreReport, len(reports))
		for i, r := range reports {
			detail.Reports[i] = *r
		}
		return nil
	})
	g.Go(func() error {
		disputes, err := s.disputeRepo.ListByLobby(gCtx, nil, lobbyID)
		if err != nil {
			return err
		}
		detail.Disputes = make([]models.ScoreDispute, len(disputes))
		for i, d := range disputes {
			detail.Disputes[i] = *d
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *bracketService) ExportBracket(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrArchiveDisabled
	}

	view, err := s.GetBracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket snapshot: %w", err)
	}

	key := fmt.Sprintf("brackets/%d/%s.json", tournamentID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket snapshot exported",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", result.Key))
	return result, nil
}
