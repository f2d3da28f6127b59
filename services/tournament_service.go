package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

const defaultRandomTeamSize = 4

type TournamentService interface {
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	// FormRandomTeams turns the user-only registrations of a RANDOMISED tournament into teams.
	FormRandomTeams(ctx context.Context, id int) ([]*models.Team, error)
}

type tournamentService struct {
	transactor       repositories.Transactor
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	memberRepo       repositories.TeamMemberRepository
	shuffle          func(n int, swap func(i, j int))
	logger           *slog.Logger
}

func NewTournamentService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		transactor:       transactor,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		memberRepo:       memberRepo,
		shuffle:          rand.Shuffle,
		logger:           logger,
	}
}

var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:              {models.StatusRegistrationOpen, models.StatusCancelled},
	models.StatusRegistrationOpen:   {models.StatusRegistrationClosed, models.StatusCancelled},
	models.StatusRegistrationClosed: {models.StatusInProgress, models.StatusRegistrationOpen, models.StatusCancelled},
	models.StatusInProgress:         {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:          {},
	models.StatusCancelled:          {models.StatusDraft},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if _, known := allowedTransitions[status]; !known {
		return nil, fmt.Errorf("%w: unknown tournament status %q", ErrValidation, status)
	}

	var updated *models.Tournament
	err := s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return mapRepoError(err)
		}
		if !isValidStatusTransition(t.Status, status) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatusTransition, t.Status, status)
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, id, status); err != nil {
			return mapRepoError(err)
		}
		t.Status = status
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament status updated",
		slog.Int("tournament_id", id),
		slog.String("status", string(status)))
	return updated, nil
}

// groupPlayers splits userIDs into chunks of teamSize. A trailing chunk smaller than
// minTeamSize is dealt round-robin into the other chunks.
func groupPlayers(userIDs []int, teamSize, minTeamSize int) [][]int {
	if teamSize < 1 {
		teamSize = defaultRandomTeamSize
	}
	groups := make([][]int, 0, len(userIDs)/teamSize+1)
	for i := 0; i < len(userIDs); i += teamSize {
		end := i + teamSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		groups = append(groups, append([]int(nil), userIDs[i:end]...))
	}

	if len(groups) > 1 && minTeamSize > 0 && len(groups[len(groups)-1]) < minTeamSize {
		last := groups[len(groups)-1]
		groups = groups[:len(groups)-1]
		for idx, uid := range last {
			groups[idx%len(groups)] = append(groups[idx%len(groups)], uid)
		}
	}
	return groups
}

func (s *tournamentService) FormRandomTeams(ctx context.Context, id int) ([]*models.Team, error) {
	var teams []*models.Team

	err := s.transactor.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return mapRepoError(err)
		}
		if t.Type != models.TournamentTypeRandomised {
			return ErrNotRandomised
		}

		regs, err := s.registrationRepo.ListByTournament(ctx, tx, id, nil)
		if err != nil {
			return err
		}
		userIDs := make([]int, 0, len(regs))
		for _, r := range regs {
			if r.TeamID == nil && r.UserID != nil {
				userIDs = append(userIDs, *r.UserID)
			}
		}
		if len(userIDs) == 0 {
			teams = []*models.Team{}
			return nil
		}

		s.shuffle(len(userIDs), func(i, j int) { userIDs[i], userIDs[j] = userIDs[j], userIDs[i] })

		teamSize := defaultRandomTeamSize
		if t.MaxTeamSize != nil && *t.MaxTeamSize > 0 {
			teamSize = *t.MaxTeamSize
		}
		minSize := 0
		if t.MinTeamSize != nil {
			minSize = *t.MinTeamSize
		}

		groups := groupPlayers(userIDs, teamSize, minSize)
		teams = make([]*models.Team, 0, len(groups))
		for i, group := range groups {
			description := fmt.Sprintf("Auto-generated team for %s", t.Name)
			team := &models.Team{
				Name:        fmt.Sprintf("Team %d (%s)", i+1, t.Name),
				Tag:         fmt.Sprintf("T%d", i+1),
				Description: &description,
			}
			if err := s.teamRepo.Create(ctx, tx, team); err != nil {
				return err
			}

			members := make([]*models.TeamMember, len(group))
			for idx, uid := range group {
				role := models.TeamRoleMember
				if idx == 0 {
					role = models.TeamRoleOwner
				}
				members[idx] = &models.TeamMember{TeamID: team.ID, UserID: uid, Role: role, Status: models.TeamMemberAccepted}
			}
			if err := s.memberRepo.CreateBatch(ctx, tx, team.ID, members); err != nil {
				return mapRepoError(err)
			}
			team.Members = make([]models.TeamMember, len(members))
			for idx, m := range members {
				team.Members[idx] = *m
			}

			teamID := team.ID
			reg := &models.Registration{TournamentID: id, TeamID: &teamID, Status: models.RegistrationStatusRegistered}
			if err := s.registrationRepo.Create(ctx, tx, reg); err != nil {
				return mapRepoError(err)
			}
			teams = append(teams, team)
		}

		if _, err := s.registrationRepo.DeleteUserOnly(ctx, tx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "random teams formed",
		slog.Int("tournament_id", id),
		slog.Int("teams", len(teams)))
	return teams, nil
}
