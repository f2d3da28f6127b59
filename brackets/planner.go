package brackets

import (
	"errors"
	"fmt"
)

// ErrPlanning is returned when a bracket cannot be planned for the given parameters.
var ErrPlanning = errors.New("bracket planning failed")

const (
	RoundNameGrandFinal    = "Grand Final"
	RoundNameSemiFinals    = "Semi Finals"
	RoundNameQuarterFinals = "Quarter Finals"
)

// RoundPlan describes one elimination stage before it is persisted.
type RoundPlan struct {
	RoundNumber  int    `json:"round_number"`
	Name         string `json:"name"`
	LobbyCount   int    `json:"lobby_count"`
	TeamsInRound int    `json:"teams_in_round"`
}

// Plan is the full outcome of planning a bracket.
type Plan struct {
	TotalTeams int         `json:"total_teams"`
	IdealSize  int         `json:"ideal_size"`
	ByeCount   int         `json:"bye_count"`
	Rounds     []RoundPlan `json:"rounds"`
}

func validatePlanParams(totalTeams, teamsPerLobby, advancersPerLobby int) error {
	if totalTeams < 2 {
		return fmt.Errorf("%w: need at least 2 teams, got %d", ErrPlanning, totalTeams)
	}
	if teamsPerLobby < 2 {
		return fmt.Errorf("%w: teams per lobby must be at least 2, got %d", ErrPlanning, teamsPerLobby)
	}
	if advancersPerLobby < 1 {
		return fmt.Errorf("%w: advancers per lobby must be at least 1, got %d", ErrPlanning, advancersPerLobby)
	}
	if advancersPerLobby >= teamsPerLobby {
		return fmt.Errorf("%w: advancers per lobby (%d) must be lower than teams per lobby (%d)",
			ErrPlanning, advancersPerLobby, teamsPerLobby)
	}
	return nil
}

// IdealSize returns the smallest bracket size >= totalTeams reachable by growing
// teamsPerLobby by the elimination ratio teamsPerLobby/advancersPerLobby.
// Each growth step is rounded up so the size stays a whole number of slots.
func IdealSize(totalTeams, teamsPerLobby, advancersPerLobby int) (int, error) {
	if err := validatePlanParams(totalTeams, teamsPerLobby, advancersPerLobby); err != nil {
		return 0, err
	}
	size := teamsPerLobby
	for size < totalTeams {
		size = ceilDiv(size*teamsPerLobby, advancersPerLobby)
	}
	return size, nil
}

// ByeCount returns the number of phantom slots needed to pad totalTeams up to the ideal size.
func ByeCount(totalTeams, teamsPerLobby, advancersPerLobby int) (int, error) {
	size, err := IdealSize(totalTeams, teamsPerLobby, advancersPerLobby)
	if err != nil {
		return 0, err
	}
	return size - totalTeams, nil
}

// RoundName names a round counting back from the last one.
func RoundName(roundNumber, totalRounds int) string {
	switch roundNumber {
	case totalRounds:
		return RoundNameGrandFinal
	case totalRounds - 1:
		return RoundNameSemiFinals
	case totalRounds - 2:
		return RoundNameQuarterFinals
	default:
		return fmt.Sprintf("Round %d", roundNumber)
	}
}

// RoundPlans computes the sequence of rounds. The last round is always a single-lobby Grand Final,
// which may seat more than teamsPerLobby teams when the field stops shrinking.
func RoundPlans(totalTeams, teamsPerLobby, advancersPerLobby int) ([]RoundPlan, error) {
	plan, err := NewPlan(totalTeams, teamsPerLobby, advancersPerLobby)
	if err != nil {
		return nil, err
	}
	return plan.Rounds, nil
}

// NewPlan computes ideal size, bye count and round plans in one pass.
func NewPlan(totalTeams, teamsPerLobby, advancersPerLobby int) (*Plan, error) {
	size, err := IdealSize(totalTeams, teamsPerLobby, advancersPerLobby)
	if err != nil {
		return nil, err
	}

	rounds := make([]RoundPlan, 0)
	remaining := size
	roundNumber := 1
	for remaining > teamsPerLobby {
		lobbyCount := ceilDiv(remaining, teamsPerLobby)
		next := lobbyCount * advancersPerLobby
		if next >= remaining {
			// Another round would not eliminate anyone, so the whole field plays the final.
			break
		}
		rounds = append(rounds, RoundPlan{
			RoundNumber:  roundNumber,
			LobbyCount:   lobbyCount,
			TeamsInRound: remaining,
		})
		remaining = next
		roundNumber++
	}
	rounds = append(rounds, RoundPlan{
		RoundNumber:  roundNumber,
		LobbyCount:   1,
		TeamsInRound: remaining,
	})

	for i := range rounds {
		rounds[i].Name = RoundName(rounds[i].RoundNumber, len(rounds))
	}

	return &Plan{
		TotalTeams: totalTeams,
		IdealSize:  size,
		ByeCount:   size - totalTeams,
		Rounds:     rounds,
	}, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
