package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/lobby-royale/brackets"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"github.com/Dosada05/lobby-royale/storage"
)

// fakeStore is an in-memory stand-in for the Postgres schema. All fake repositories
// share one store; fakeTransactor snapshots it and restores on error.
type fakeStore struct {
	mu sync.Mutex

	nextID        int
	tournaments   map[int]models.Tournament
	registrations map[int]models.Registration
	teams         map[int]models.Team
	members       map[int]models.TeamMember
	rounds        map[int]models.Round
	lobbies       map[int]models.Lobby
	seats         map[int]models.LobbyTeam
	reports       map[int]models.ScoreReport
	disputes      map[int]models.ScoreDispute
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments:   map[int]models.Tournament{},
		registrations: map[int]models.Registration{},
		teams:         map[int]models.Team{},
		members:       map[int]models.TeamMember{},
		rounds:        map[int]models.Round{},
		lobbies:       map[int]models.Lobby{},
		seats:         map[int]models.LobbyTeam{},
		reports:       map[int]models.ScoreReport{},
		disputes:      map[int]models.ScoreDispute{},
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &fakeStore{
		nextID:        s.nextID,
		tournaments:   cloneMap(s.tournaments),
		registrations: cloneMap(s.registrations),
		teams:         cloneMap(s.teams),
		members:       cloneMap(s.members),
		rounds:        cloneMap(s.rounds),
		lobbies:       cloneMap(s.lobbies),
		seats:         cloneMap(s.seats),
		reports:       cloneMap(s.reports),
		disputes:      cloneMap(s.disputes),
	}
}

func (s *fakeStore) restore(from *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = from.nextID
	s.tournaments = from.tournaments
	s.registrations = from.registrations
	s.teams = from.teams
	s.members = from.members
	s.rounds = from.rounds
	s.lobbies = from.lobbies
	s.seats = from.seats
	s.reports = from.reports
	s.disputes = from.disputes
}

type fakeTransactor struct {
	store *fakeStore
	calls int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// --- tournaments ---

type fakeTournamentRepo struct{ s *fakeStore }

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerTeamID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerTeamID = winnerTeamID
	r.s.tournaments[id] = t
	return nil
}

// --- registrations ---

type fakeRegistrationRepo struct{ s *fakeStore }

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.registrations {
		if existing.TournamentID != reg.TournamentID {
			continue
		}
		if reg.TeamID != nil && existing.TeamID != nil && *existing.TeamID == *reg.TeamID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = r.s.id()
	reg.CreatedAt = time.Now()
	r.s.registrations[reg.ID] = *reg
	return nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Registration, 0)
	for _, reg := range r.s.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && reg.Status != *statusFilter {
			continue
		}
		reg := reg
		out = append(out, &reg)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Seed, out[j].Seed
		switch {
		case si != nil && sj != nil && *si != *sj:
			return *si < *sj
		case si != nil && sj == nil:
			return true
		case si == nil && sj != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRegistrationRepo) DeleteUserOnly(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, reg := range r.s.registrations {
		if reg.TournamentID == tournamentID && reg.TeamID == nil {
			delete(r.s.registrations, id)
			n++
		}
	}
	return n, nil
}

// --- teams ---

type fakeTeamRepo struct{ s *fakeStore }

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team.ID = r.s.id()
	r.s.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &t, nil
}

type fakeMemberRepo struct{ s *fakeStore }

func (r *fakeMemberRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, teamID int, members []*models.TeamMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range members {
		m.TeamID = teamID
		m.ID = r.s.id()
		r.s.members[m.ID] = *m
	}
	return nil
}

func (r *fakeMemberRepo) FindUserTeamInLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID, userID int) (*int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, seat := range r.s.seats {
		if seat.LobbyID != lobbyID || seat.IsBye || seat.TeamID == nil {
			continue
		}
		for _, m := range r.s.members {
			if m.TeamID == *seat.TeamID && m.UserID == userID && m.Status == models.TeamMemberAccepted {
				id := m.TeamID
				return &id, nil
			}
		}
	}
	return nil, nil
}

// --- rounds ---

type fakeRoundRepo struct{ s *fakeStore }

func (r *fakeRoundRepo) Create(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.rounds {
		if existing.TournamentID == round.TournamentID && existing.RoundNumber == round.RoundNumber {
			return repositories.ErrRoundConflict
		}
	}
	round.ID = r.s.id()
	r.s.rounds[round.ID] = *round
	return nil
}

func (r *fakeRoundRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	return &round, nil
}

func (r *fakeRoundRepo) GetByNumber(ctx context.Context, exec repositories.SQLExecutor, tournamentID, roundNumber int) (*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, round := range r.s.rounds {
		if round.TournamentID == tournamentID && round.RoundNumber == roundNumber {
			round := round
			return &round, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *fakeRoundRepo) GetLast(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Round, error) {
	rounds, _ := r.ListByTournament(ctx, exec, tournamentID)
	if len(rounds) == 0 {
		return nil, repositories.ErrRoundNotFound
	}
	return rounds[len(rounds)-1], nil
}

func (r *fakeRoundRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Round, 0)
	for _, round := range r.s.rounds {
		if round.TournamentID == tournamentID {
			round := round
			out = append(out, &round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r *fakeRoundRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RoundStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	round.Status = status
	r.s.rounds[id] = round
	return nil
}

func (r *fakeRoundRepo) AddSettled(ctx context.Context, exec repositories.SQLExecutor, id int, delta int) (*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	round.SettledLobbies += delta
	r.s.rounds[id] = round
	return &round, nil
}

// DeleteByTournament cascades like the schema does.
func (r *fakeRoundRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, round := range r.s.rounds {
		if round.TournamentID != tournamentID {
			continue
		}
		delete(r.s.rounds, id)
		n++
		for lid, l := range r.s.lobbies {
			if l.RoundID != id {
				continue
			}
			delete(r.s.lobbies, lid)
			for sid, seat := range r.s.seats {
				if seat.LobbyID == lid {
					delete(r.s.seats, sid)
				}
			}
			for rid, rep := range r.s.reports {
				if rep.LobbyID == lid {
					delete(r.s.reports, rid)
				}
			}
			for did, d := range r.s.disputes {
				if d.LobbyID == lid {
					delete(r.s.disputes, did)
				}
			}
		}
	}
	return n, nil
}

// --- lobbies ---

type fakeLobbyRepo struct{ s *fakeStore }

func (r *fakeLobbyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, lobby *models.Lobby) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lobby.ID = r.s.id()
	stored := *lobby
	stored.Teams = nil
	r.s.lobbies[lobby.ID] = stored
	return nil
}

func (r *fakeLobbyRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lobbies[id]
	if !ok {
		return nil, repositories.ErrLobbyNotFound
	}
	return &l, nil
}

func (r *fakeLobbyRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeLobbyRepo) filter(keep func(models.Lobby) bool) []*models.Lobby {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Lobby, 0)
	for _, l := range r.s.lobbies {
		if keep(l) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeLobbyRepo) ListByRound(ctx context.Context, exec repositories.SQLExecutor, roundID int) ([]*models.Lobby, error) {
	return r.filter(func(l models.Lobby) bool { return l.RoundID == roundID }), nil
}

func (r *fakeLobbyRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Lobby, error) {
	return r.filter(func(l models.Lobby) bool { return l.TournamentID == tournamentID }), nil
}

func (r *fakeLobbyRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.LobbyStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lobbies[id]
	if !ok {
		return repositories.ErrLobbyNotFound
	}
	l.Status = status
	r.s.lobbies[id] = l
	return nil
}

func (r *fakeLobbyRepo) CountNotInStatus(ctx context.Context, exec repositories.SQLExecutor, roundID int, status models.LobbyStatus) (int, error) {
	n := 0
	for _, l := range r.filter(func(l models.Lobby) bool { return l.RoundID == roundID }) {
		if l.Status != status {
			n++
		}
	}
	return n, nil
}

// --- seats ---

type fakeSeatRepo struct{ s *fakeStore }

func (r *fakeSeatRepo) Create(ctx context.Context, exec repositories.SQLExecutor, seat *models.LobbyTeam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if seat.IsBye != (seat.TeamID == nil) {
		return repositories.ErrLobbyTeamByeMismatch
	}
	if seat.TeamID != nil {
		for _, existing := range r.s.seats {
			if existing.LobbyID == seat.LobbyID && existing.TeamID != nil && *existing.TeamID == *seat.TeamID {
				return repositories.ErrLobbyTeamConflict
			}
		}
	}
	seat.ID = r.s.id()
	r.s.seats[seat.ID] = *seat
	return nil
}

func (r *fakeSeatRepo) filter(keep func(models.LobbyTeam) bool) []models.LobbyTeam {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.LobbyTeam, 0)
	for _, seat := range r.s.seats {
		if keep(seat) {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LobbyID != out[j].LobbyID {
			return out[i].LobbyID < out[j].LobbyID
		}
		if out[i].Seed != out[j].Seed {
			return out[i].Seed < out[j].Seed
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeSeatRepo) ListByLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) ([]models.LobbyTeam, error) {
	return r.filter(func(s models.LobbyTeam) bool { return s.LobbyID == lobbyID }), nil
}

func (r *fakeSeatRepo) ListByLobbies(ctx context.Context, exec repositories.SQLExecutor, lobbyIDs []int) ([]models.LobbyTeam, error) {
	want := make(map[int]bool, len(lobbyIDs))
	for _, id := range lobbyIDs {
		want[id] = true
	}
	return r.filter(func(s models.LobbyTeam) bool { return want[s.LobbyID] }), nil
}

func (r *fakeSeatRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.LobbyTeam, error) {
	r.s.mu.Lock()
	lobbyIDs := map[int]bool{}
	for _, l := range r.s.lobbies {
		if l.TournamentID == tournamentID {
			lobbyIDs[l.ID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(func(s models.LobbyTeam) bool { return lobbyIDs[s.LobbyID] }), nil
}

func (r *fakeSeatRepo) ExistsInLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID, teamID int) (bool, error) {
	seats := r.filter(func(s models.LobbyTeam) bool {
		return s.LobbyID == lobbyID && s.TeamID != nil && *s.TeamID == teamID
	})
	return len(seats) > 0, nil
}

func (r *fakeSeatRepo) UpdatePlacement(ctx context.Context, exec repositories.SQLExecutor, id int, placement int, isAdvancer bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seat, ok := r.s.seats[id]
	if !ok || seat.IsBye {
		return repositories.ErrLobbyTeamNotFound
	}
	seat.Placement = &placement
	seat.IsAdvancer = isAdvancer
	r.s.seats[id] = seat
	return nil
}

// --- score reports ---

type fakeReportRepo struct{ s *fakeStore }

func (r *fakeReportRepo) Create(ctx context.Context, exec repositories.SQLExecutor, report *models.ScoreReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if report.ReportedByTeamID != nil {
		for _, existing := range r.s.reports {
			if existing.LobbyID == report.LobbyID && existing.ReportedByTeamID != nil &&
				*existing.ReportedByTeamID == *report.ReportedByTeamID {
				return repositories.ErrScoreReportConflict
			}
		}
	}
	report.ID = r.s.id()
	report.CreatedAt = time.Now()
	entries := make([]models.ScoreReportEntry, len(report.Entries))
	for i, e := range report.Entries {
		e.ID = r.s.id()
		e.ReportID = report.ID
		entries[i] = e
		report.Entries[i] = e
	}
	stored := *report
	stored.Entries = entries
	r.s.reports[report.ID] = stored
	return nil
}

func (r *fakeReportRepo) ListByLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int, unconfirmedOnly bool) ([]*models.ScoreReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.ScoreReport, 0)
	for _, rep := range r.s.reports {
		if rep.LobbyID != lobbyID || (unconfirmedOnly && rep.IsConfirmed) {
			continue
		}
		rep := rep
		rep.Entries = append([]models.ScoreReportEntry(nil), rep.Entries...)
		out = append(out, &rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReportRepo) ExistsForTeam(ctx context.Context, exec repositories.SQLExecutor, lobbyID, teamID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.LobbyID == lobbyID && rep.ReportedByTeamID != nil && *rep.ReportedByTeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReportRepo) ConfirmAllForLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rep := range r.s.reports {
		if rep.LobbyID == lobbyID && !rep.IsConfirmed {
			rep.IsConfirmed = true
			r.s.reports[id] = rep
			n++
		}
	}
	return n, nil
}

func (r *fakeReportRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[int]int{}
	for _, rep := range r.s.reports {
		if l, ok := r.s.lobbies[rep.LobbyID]; ok && l.TournamentID == tournamentID {
			counts[rep.LobbyID]++
		}
	}
	return counts, nil
}

// --- disputes ---

type fakeDisputeRepo struct{ s *fakeStore }

func (r *fakeDisputeRepo) Create(ctx context.Context, exec repositories.SQLExecutor, d *models.ScoreDispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	d.CreatedAt = time.Now()
	r.s.disputes[d.ID] = *d
	return nil
}

func (r *fakeDisputeRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.ScoreDispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disputes[id]
	if !ok {
		return nil, repositories.ErrDisputeNotFound
	}
	return &d, nil
}

func (r *fakeDisputeRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.ScoreDispute, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeDisputeRepo) UpdateResolution(ctx context.Context, exec repositories.SQLExecutor, id int, status models.DisputeStatus, resolvedByID int, resolution *string, resolvedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disputes[id]
	if !ok {
		return repositories.ErrDisputeNotFound
	}
	d.Status = status
	d.ResolvedByID = &resolvedByID
	d.Resolution = resolution
	d.ResolvedAt = &resolvedAt
	r.s.disputes[id] = d
	return nil
}

func (r *fakeDisputeRepo) ResolveOpenForLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID, resolvedByID int, resolution string, resolvedAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, d := range r.s.disputes {
		if d.LobbyID != lobbyID || d.Status != models.DisputeStatusOpen {
			continue
		}
		by, text, at := resolvedByID, resolution, resolvedAt
		d.Status = models.DisputeStatusResolved
		d.ResolvedByID = &by
		d.Resolution = &text
		d.ResolvedAt = &at
		r.s.disputes[id] = d
		n++
	}
	return n, nil
}

func (r *fakeDisputeRepo) ListByLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) ([]*models.ScoreDispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.ScoreDispute, 0)
	for _, d := range r.s.disputes {
		if d.LobbyID == lobbyID {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDisputeRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[int]int{}
	for _, d := range r.s.disputes {
		if l, ok := r.s.lobbies[d.LobbyID]; ok && l.TournamentID == tournamentID {
			counts[d.LobbyID]++
		}
	}
	return counts, nil
}

// --- uploader ---

type fakeUploader struct {
	keys     []string
	payloads [][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.keys = append(u.keys, key)
	u.payloads = append(u.payloads, buf.Bytes())
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// --- wiring ---

type testEnv struct {
	store       *fakeStore
	tx          *fakeTransactor
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	teams       *fakeTeamRepo
	members     *fakeMemberRepo
	rounds      *fakeRoundRepo
	lobbies     *fakeLobbyRepo
	seats       *fakeSeatRepo
	reports     *fakeReportRepo
	disputes    *fakeDisputeRepo
	uploader    *fakeUploader

	advancement AdvancementService
	scores      ScoreService
	disputeSvc  DisputeService
	bracketSvc  BracketService
	tournament  TournamentService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:       store,
		tx:          &fakeTransactor{store: store},
		tournaments: &fakeTournamentRepo{store},
		regs:        &fakeRegistrationRepo{store},
		teams:       &fakeTeamRepo{store},
		members:     &fakeMemberRepo{store},
		rounds:      &fakeRoundRepo{store},
		lobbies:     &fakeLobbyRepo{store},
		seats:       &fakeSeatRepo{store},
		reports:     &fakeReportRepo{store},
		disputes:    &fakeDisputeRepo{store},
		uploader:    &fakeUploader{},
	}
	logger := discardLogger()
	env.advancement = NewAdvancementService(env.tx, env.tournaments, env.rounds, env.lobbies, env.seats, logger)
	env.scores = NewScoreService(env.tx, env.tournaments, env.rounds, env.lobbies, env.seats, env.reports,
		env.disputes, env.members, env.advancement, logger)
	env.disputeSvc = NewDisputeService(env.tx, env.tournaments, env.rounds, env.lobbies, env.seats, env.reports,
		env.disputes, env.advancement, logger)
	env.bracketSvc = newTestBracketService(env, env.uploader)
	env.tournament = NewTournamentService(env.tx, env.tournaments, env.regs, env.teams, env.members, logger)
	return env
}

func newTestBracketService(env *testEnv, uploader storage.FileUploader) BracketService {
	return NewBracketService(env.tx, env.tournaments, env.regs, env.rounds, env.lobbies, env.seats,
		env.reports, env.disputes, brackets.NewLobbyEliminationGenerator(), uploader, discardLogger())
}

// seedTournament creates a tournament in REGISTRATION_CLOSED with teamCount registered teams.
func (e *testEnv) seedTournament(teamCount, perLobby, advancers int) (*models.Tournament, []int) {
	ctx := context.Background()
	t := &models.Tournament{
		Name:              "Friday Night Drop",
		Type:              models.TournamentTypeTeam,
		Status:            models.StatusRegistrationClosed,
		TeamsPerLobby:     perLobby,
		AdvancersPerLobby: advancers,
	}
	_ = e.tournaments.Create(ctx, nil, t)

	teamIDs := make([]int, teamCount)
	for i := 0; i < teamCount; i++ {
		team := &models.Team{Name: "Squad", Tag: "SQ"}
		_ = e.teams.Create(ctx, nil, team)
		teamIDs[i] = team.ID
		seed := i + 1
		teamID := team.ID
		_ = e.regs.Create(ctx, nil, &models.Registration{
			TournamentID: t.ID, TeamID: &teamID, Status: models.RegistrationStatusRegistered, Seed: &seed,
		})
	}
	return t, teamIDs
}

func (e *testEnv) roundByNumber(t *models.Tournament, n int) *models.Round {
	r, err := e.rounds.GetByNumber(context.Background(), nil, t.ID, n)
	if err != nil {
		return nil
	}
	return r
}

func (e *testEnv) lobbiesOf(roundID int) []*models.Lobby {
	lobbies, _ := e.lobbies.ListByRound(context.Background(), nil, roundID)
	sort.Slice(lobbies, func(i, j int) bool { return lobbies[i].LobbyNumber < lobbies[j].LobbyNumber })
	return lobbies
}

func (e *testEnv) realSeats(lobbyID int) []models.LobbyTeam {
	seats, _ := e.seats.ListByLobby(context.Background(), nil, lobbyID)
	out := make([]models.LobbyTeam, 0, len(seats))
	for _, s := range seats {
		if !s.IsBye {
			out = append(out, s)
		}
	}
	return out
}

// placementsBySeed ranks the lobby's real seats in seed order: best seed finishes first.
func placementsBySeed(seats []models.LobbyTeam) []models.Placement {
	out := make([]models.Placement, len(seats))
	for i, s := range seats {
		out[i] = models.Placement{LobbyTeamID: s.ID, Placement: i + 1}
	}
	return out
}
