package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner hands the callback a nil executor; the fake repositories
// ignore it, so service transaction flows run against plain maps.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func copyMatch(m *models.Match) *models.Match {
	clone := *m
	return &clone
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.nextID++
	match.ID = r.nextID
	match.CreatedAt = time.Now()
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	var result []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Section != nil && m.Section != *filter.Section {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		result = append(result, copyMatch(m))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeMatchRepo) UpdateAdvancementLinks(ctx context.Context, exec repositories.SQLExecutor, matchID int, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.NextSlot = nextSlot
	m.LoserNextMatchID = loserNextMatchID
	m.LoserNextSlot = loserNextSlot
	return nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, matchID int, p1Score, p2Score *int, winnerID *int, status models.MatchStatus) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Player1Score = p1Score
	m.Player2Score = p2Score
	m.WinnerID = winnerID
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) SetPlayerSlot(ctx context.Context, exec repositories.SQLExecutor, matchID int, slot int, participantID int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	switch slot {
	case 1:
		if m.Player1ID != nil {
			return repositories.ErrMatchSlotOccupied
		}
		m.Player1ID = &participantID
	case 2:
		if m.Player2ID != nil {
			return repositories.ErrMatchSlotOccupied
		}
		m.Player2ID = &participantID
	default:
		return repositories.ErrMatchSlotOccupied
	}
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var result []models.Tournament
	for _, t := range r.tournaments {
		result = append(result, *t)
	}
	return result, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, tournament *models.Tournament) error {
	if _, ok := r.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	t, ok := r.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) UpdateOverallWinner(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, winnerParticipantID *int) error {
	t, ok := r.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.OverallWinnerParticipantID = winnerParticipantID
	return nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	return nil, nil
}

type fakeParticipantRepo struct {
	nextID       int
	participants map[int]*models.Participant
}

func newFakeParticipantRepo(participants ...*models.Participant) *fakeParticipantRepo {
	r := &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
	for _, p := range participants {
		r.participants[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.UserID == p.UserID && existing.TournamentID == p.TournamentID {
			return repositories.ErrParticipantAlreadyRegistered
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.participants[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	return p, nil
}

func (r *fakeParticipantRepo) FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.UserID == userID && p.TournamentID == tournamentID {
			return p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	return r.list(tournamentID, false), nil
}

func (r *fakeParticipantRepo) ListConfirmedByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	return r.list(tournamentID, true), nil
}

func (r *fakeParticipantRepo) list(tournamentID int, confirmedOnly bool) []*models.Participant {
	var result []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID != tournamentID {
			continue
		}
		if confirmedOnly && p.Status != models.ParticipantStatusConfirmed {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		si, sj := result[i].Seed, result[j].Seed
		if si != nil && sj != nil && *si != *sj {
			return *si < *sj
		}
		if (si == nil) != (sj == nil) {
			return si != nil
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *fakeParticipantRepo) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeParticipantRepo) UpdateSeed(ctx context.Context, id int, seed *int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Seed = seed
	return nil
}

func (r *fakeParticipantRepo) Delete(ctx context.Context, id int) error {
	delete(r.participants, id)
	return nil
}

type fakeFormatRepo struct {
	formats map[int]*models.Format
}

func newFakeFormatRepo(formats ...*models.Format) *fakeFormatRepo {
	r := &fakeFormatRepo{formats: make(map[int]*models.Format)}
	for _, f := range formats {
		r.formats[f.ID] = f
	}
	return r
}

func (r *fakeFormatRepo) Create(ctx context.Context, format *models.Format) error {
	r.formats[format.ID] = format
	return nil
}

func (r *fakeFormatRepo) GetByID(ctx context.Context, id int) (*models.Format, error) {
	f, ok := r.formats[id]
	if !ok {
		return nil, repositories.ErrFormatNotFound
	}
	return f, nil
}

func (r *fakeFormatRepo) GetAll(ctx context.Context) ([]models.Format, error) {
	var result []models.Format
	for _, f := range r.formats {
		result = append(result, *f)
	}
	return result, nil
}

func (r *fakeFormatRepo) Delete(ctx context.Context, id int) error {
	delete(r.formats, id)
	return nil
}

type fakeStandingRepo struct {
	nextID    int
	standings map[[2]int]*models.TournamentStanding
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{standings: make(map[[2]int]*models.TournamentStanding)}
}

func (r *fakeStandingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, standing *models.TournamentStanding) error {
	r.nextID++
	standing.ID = r.nextID
	r.standings[[2]int{standing.TournamentID, standing.ParticipantID}] = standing
	return nil
}

func (r *fakeStandingRepo) GetByTournamentAndParticipant(ctx context.Context, exec repositories.SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error) {
	s, ok := r.standings[[2]int{tournamentID, participantID}]
	if !ok {
		return nil, repositories.ErrTournamentStandingNotFound
	}
	return s, nil
}

func (r *fakeStandingRepo) Update(ctx context.Context, exec repositories.SQLExecutor, standing *models.TournamentStanding) error {
	r.standings[[2]int{standing.TournamentID, standing.ParticipantID}] = standing
	return nil
}

func (r *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, sortByRank bool) ([]*models.TournamentStanding, error) {
	var result []*models.TournamentStanding
	for _, s := range r.standings {
		if s.TournamentID == tournamentID {
			result = append(result, s)
		}
	}
	if sortByRank {
		sort.Slice(result, func(i, j int) bool {
			if result[i].Points != result[j].Points {
				return result[i].Points > result[j].Points
			}
			if result[i].ScoreDifference != result[j].ScoreDifference {
				return result[i].ScoreDifference > result[j].ScoreDifference
			}
			if result[i].ScoreFor != result[j].ScoreFor {
				return result[i].ScoreFor > result[j].ScoreFor
			}
			return result[i].ParticipantID < result[j].ParticipantID
		})
	}
	return result, nil
}

func (r *fakeStandingRepo) GetOrCreate(ctx context.Context, exec repositories.SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error) {
	if s, ok := r.standings[[2]int{tournamentID, participantID}]; ok {
		return s, nil
	}
	s := &models.TournamentStanding{TournamentID: tournamentID, ParticipantID: participantID}
	if err := r.Create(ctx, exec, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *fakeStandingRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for key, s := range r.standings {
		if s.TournamentID == tournamentID {
			delete(r.standings, key)
		}
	}
	return nil
}

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func copyUser(u *models.User) *models.User {
	clone := *u
	return &clone
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLogoKey(ctx context.Context, userID int, logoKey *string) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.LogoKey = logoKey
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	delete(r.users, id)
	return nil
}
