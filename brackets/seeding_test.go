package brackets

import (
	"reflect"
	"testing"
)

func TestSnakeSeedDistribution(t *testing.T) {
	tests := []struct {
		name       string
		seeds      []int
		lobbyCount int
		want       [][]int
	}{
		{
			name:       "eight seeds two lobbies",
			seeds:      []int{1, 2, 3, 4, 5, 6, 7, 8},
			lobbyCount: 2,
			want:       [][]int{{1, 4, 5, 8}, {2, 3, 6, 7}},
		},
		{
			name:       "nine seeds three lobbies",
			seeds:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
			lobbyCount: 3,
			want:       [][]int{{1, 6, 7}, {2, 5, 8}, {3, 4, 9}},
		},
		{
			name:       "single lobby",
			seeds:      []int{1, 2, 3},
			lobbyCount: 1,
			want:       [][]int{{1, 2, 3}},
		},
		{
			name:       "fewer seeds than lobbies",
			seeds:      []int{1, 2},
			lobbyCount: 3,
			want:       [][]int{{1}, {2}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnakeSeedDistribution(tt.seeds, tt.lobbyCount)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SnakeSeedDistribution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnakeSeedDistributionNoLobbies(t *testing.T) {
	if got := SnakeSeedDistribution([]int{1, 2}, 0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestPadWithByesFillsFromLastLobby(t *testing.T) {
	lobbies := [][]Slot{
		{TeamSlot(1, 1), TeamSlot(4, 4), TeamSlot(5, 5)},
		{TeamSlot(2, 2), TeamSlot(3, 3)},
	}

	left := PadWithByes(lobbies, 4, 3)
	if left != 0 {
		t.Fatalf("PadWithByes() left %d byes", left)
	}
	if len(lobbies[1]) != 4 || !lobbies[1][2].IsBye() || !lobbies[1][3].IsBye() {
		t.Errorf("last lobby = %+v, want two trailing byes", lobbies[1])
	}
	if len(lobbies[0]) != 4 || !lobbies[0][3].IsBye() {
		t.Errorf("first lobby = %+v, want one trailing bye", lobbies[0])
	}
}

func TestPadWithByesNeverDisplacesTeams(t *testing.T) {
	lobbies := [][]Slot{
		{TeamSlot(1, 1), TeamSlot(2, 2)},
		{TeamSlot(3, 3), TeamSlot(4, 4)},
	}
	left := PadWithByes(lobbies, 2, 2)
	if left != 2 {
		t.Fatalf("PadWithByes() left = %d, want 2", left)
	}
	for i, l := range lobbies {
		for _, s := range l {
			if s.IsBye() {
				t.Errorf("lobby %d received a bye although it was full", i)
			}
		}
	}
}
