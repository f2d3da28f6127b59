package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/lobby-royale/models"
)

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to models.TournamentStatus
		want     bool
	}{
		{models.StatusDraft, models.StatusRegistrationOpen, true},
		{models.StatusDraft, models.StatusInProgress, false},
		{models.StatusRegistrationOpen, models.StatusRegistrationClosed, true},
		{models.StatusRegistrationClosed, models.StatusRegistrationOpen, true},
		{models.StatusRegistrationClosed, models.StatusInProgress, true},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusDraft, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusDraft, true},
		{models.StatusDraft, models.StatusDraft, false},
	}
	for _, tt := range tests {
		if got := isValidStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament, _ := env.seedTournament(2, 4, 2)

	updated, err := env.tournament.UpdateStatus(ctx, tournament.ID, models.StatusRegistrationOpen)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.StatusRegistrationOpen {
		t.Errorf("status = %s", updated.Status)
	}

	if _, err := env.tournament.UpdateStatus(ctx, tournament.ID, models.StatusCompleted); !errors.Is(err, ErrConflict) {
		t.Errorf("invalid transition err = %v, want ErrConflict", err)
	}
	if _, err := env.tournament.UpdateStatus(ctx, tournament.ID, "ARCHIVED"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown status err = %v, want ErrValidation", err)
	}
	if _, err := env.tournament.UpdateStatus(ctx, 404, models.StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing tournament err = %v, want ErrNotFound", err)
	}
}

func TestGroupPlayers(t *testing.T) {
	tests := []struct {
		name     string
		users    []int
		size     int
		minSize  int
		expected [][]int
	}{
		{"even split", []int{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2, [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}}},
		{"remainder kept", []int{1, 2, 3, 4, 5, 6}, 4, 2, [][]int{{1, 2, 3, 4}, {5, 6}}},
		{"remainder folded", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 4, 2, [][]int{{1, 2, 3, 4, 9}, {5, 6, 7, 8}}},
		{"folded round robin", []int{1, 2, 3, 4, 5, 6, 7}, 3, 2, [][]int{{1, 2, 3, 7}, {4, 5, 6}}},
		{"single small group stays", []int{1}, 4, 2, [][]int{{1}}},
		{"no minimum", []int{1, 2, 3, 4, 5}, 4, 0, [][]int{{1, 2, 3, 4}, {5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := groupPlayers(tt.users, tt.size, tt.minSize)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("groupPlayers = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormRandomTeams(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	maxSize, minSize := 2, 2
	tournament := &models.Tournament{
		Name:              "Mixer",
		Type:              models.TournamentTypeRandomised,
		Status:            models.StatusRegistrationClosed,
		TeamsPerLobby:     4,
		AdvancersPerLobby: 2,
		MaxTeamSize:       &maxSize,
		MinTeamSize:       &minSize,
	}
	_ = env.tournaments.Create(ctx, nil, tournament)
	for uid := 1; uid <= 5; uid++ {
		uid := uid
		_ = env.regs.Create(ctx, nil, &models.Registration{
			TournamentID: tournament.ID, UserID: &uid, Status: models.RegistrationStatusRegistered,
		})
	}
	// Reverse instead of shuffling so the grouping is predictable.
	env.tournament.(*tournamentService).shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	teams, err := env.tournament.FormRandomTeams(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("FormRandomTeams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(teams))
	}
	if got := len(teams[0].Members) + len(teams[1].Members); got != 5 {
		t.Errorf("members = %d, want 5", got)
	}
	if teams[0].Members[0].UserID != 5 || teams[0].Members[0].Role != models.TeamRoleOwner {
		t.Errorf("first member of team 1 = %+v, want owner user 5", teams[0].Members[0])
	}
	if teams[0].Name != "Team 1 (Mixer)" || teams[1].Tag != "T2" {
		t.Errorf("team naming = %q, %q", teams[0].Name, teams[1].Tag)
	}

	regs, _ := env.regs.ListByTournament(ctx, nil, tournament.ID, nil)
	if len(regs) != 2 {
		t.Fatalf("registrations = %d, want 2 team registrations", len(regs))
	}
	for _, r := range regs {
		if r.TeamID == nil || r.UserID != nil {
			t.Errorf("user-only registration left behind: %+v", r)
		}
	}

	plan, err := env.bracketSvc.GenerateBracket(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("GenerateBracket after forming teams: %v", err)
	}
	if plan.TotalTeams != 2 {
		t.Errorf("bracket teams = %d", plan.TotalTeams)
	}
}

func TestFormRandomTeamsRequiresRandomised(t *testing.T) {
	env := newTestEnv()
	tournament, _ := env.seedTournament(2, 4, 2)
	_, err := env.tournament.FormRandomTeams(context.Background(), tournament.ID)
	if !errors.Is(err, ErrNotRandomised) {
		t.Fatalf("err = %v, want ErrNotRandomised", err)
	}
}
