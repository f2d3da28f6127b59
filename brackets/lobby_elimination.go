package brackets

import (
	"context"
	"fmt"
	"sort"
)

// LobbyEliminationGenerator lays out a multi-team lobby bracket: round one is
// snake-seeded and padded with byes, later rounds are empty lobby shells.
type LobbyEliminationGenerator struct{}

func NewLobbyEliminationGenerator() BracketGenerator {
	return &LobbyEliminationGenerator{}
}

func (g *LobbyEliminationGenerator) GetName() string {
	return "LobbyElimination"
}

func (g *LobbyEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := NewPlan(len(params.Teams), params.TeamsPerLobby, params.AdvancersPerLobby)
	if err != nil {
		return nil, err
	}

	teams := make([]SeededTeam, len(params.Teams))
	copy(teams, params.Teams)
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Seed < teams[j].Seed
	})

	first := plan.Rounds[0]
	slots := make([]Slot, len(teams))
	for i, t := range teams {
		slots[i] = TeamSlot(t.TeamID, t.Seed)
	}
	dealt := SnakeSeedDistribution(slots, first.LobbyCount)
	capacity := max(params.TeamsPerLobby, ceilDiv(first.TeamsInRound, first.LobbyCount))
	if left := PadWithByes(dealt, capacity, plan.ByeCount); left > 0 {
		// Lobby capacity can exceed the ideal size but never fall short of it.
		return nil, fmt.Errorf("%w: %d byes could not be placed in round 1", ErrPlanning, left)
	}

	rounds := make([]BracketRound, 0, len(plan.Rounds))
	for _, rp := range plan.Rounds {
		round := BracketRound{RoundPlan: rp, Lobbies: make([]BracketLobby, rp.LobbyCount)}
		for i := range round.Lobbies {
			round.Lobbies[i].LobbyNumber = i + 1
			if rp.RoundNumber == 1 {
				round.Lobbies[i].Slots = dealt[i]
			}
		}
		rounds = append(rounds, round)
	}

	return &Bracket{Plan: plan, Rounds: rounds}, nil
}
