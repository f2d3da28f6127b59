package brackets

// SlotKind tells a real team slot apart from a bye.
type SlotKind int

const (
	SlotTeam SlotKind = iota
	SlotBye
)

// ByeSeed orders bye slots after every real seed.
const ByeSeed = 999

// Slot is one seat in a lobby: either a real team or a bye.
type Slot struct {
	Kind   SlotKind `json:"kind"`
	TeamID int      `json:"team_id,omitempty"`
	Seed   int      `json:"seed"`
}

func TeamSlot(teamID, seed int) Slot {
	return Slot{Kind: SlotTeam, TeamID: teamID, Seed: seed}
}

func ByeSlot() Slot {
	return Slot{Kind: SlotBye, Seed: ByeSeed}
}

func (s Slot) IsBye() bool {
	return s.Kind == SlotBye
}

// SnakeSeedDistribution deals items (strongest first) into lobbyCount lobbies,
// walking left to right and then right to left so strong seeds are spread out.
func SnakeSeedDistribution[T any](items []T, lobbyCount int) [][]T {
	if lobbyCount <= 0 {
		return nil
	}
	lobbies := make([][]T, lobbyCount)
	for i := range lobbies {
		lobbies[i] = make([]T, 0, len(items)/lobbyCount+1)
	}

	idx, direction := 0, 1
	for _, item := range items {
		lobbies[idx] = append(lobbies[idx], item)
		idx += direction
		if idx >= lobbyCount || idx < 0 {
			direction = -direction
			idx += direction
		}
	}
	return lobbies
}

// PadWithByes tops up short lobbies with bye slots, starting from the last lobby,
// until byeCount is used up. Full lobbies are never touched. It returns the number
// of byes that did not fit.
func PadWithByes(lobbies [][]Slot, teamsPerLobby, byeCount int) int {
	remaining := byeCount
	for i := len(lobbies) - 1; i >= 0 && remaining > 0; i-- {
		for len(lobbies[i]) < teamsPerLobby && remaining > 0 {
			lobbies[i] = append(lobbies[i], ByeSlot())
			remaining--
		}
	}
	return remaining
}
