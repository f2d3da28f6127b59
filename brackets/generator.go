package brackets

import (
	"context"
)

// SeededTeam is a registered team with its seed (1 = strongest).
type SeededTeam struct {
	TeamID int
	Seed   int
}

type GenerateBracketParams struct {
	TournamentID      int
	TeamsPerLobby     int
	AdvancersPerLobby int
	Teams             []SeededTeam
}

// BracketLobby is a lobby layout. Lobbies of later rounds have no slots until
// teams advance into them.
type BracketLobby struct {
	LobbyNumber int
	Slots       []Slot
}

// HasRealTeam reports whether at least one non-bye slot is present.
func (l BracketLobby) HasRealTeam() bool {
	for _, s := range l.Slots {
		if !s.IsBye() {
			return true
		}
	}
	return false
}

type BracketRound struct {
	RoundPlan
	Lobbies []BracketLobby
}

// SettledLobbies counts lobbies that can never produce results because they hold no team.
// Only round one lobbies are counted; later lobbies are filled by advancement.
func (r BracketRound) SettledLobbies() int {
	if r.RoundNumber != 1 {
		return 0
	}
	n := 0
	for _, l := range r.Lobbies {
		if !l.HasRealTeam() {
			n++
		}
	}
	return n
}

type Bracket struct {
	Plan   *Plan
	Rounds []BracketRound
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error)

	GetName() string
}
