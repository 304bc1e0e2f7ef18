package services

import (
	"context"
	"sort"
	"sync"

	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

// fakeMatchRepository is an in-memory MatchRepository keyed by match ID.
// Individual methods can be overridden through the Fn fields.
type fakeMatchRepository struct {
	mu      sync.Mutex
	matches map[int]*models.Match

	resolveCalls int

	GetByExternalIDFn func(ctx context.Context, externalID string) (*models.Match, error)
	UpdateResultFn    func(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error
}

func newFakeMatchRepository(matches ...*models.Match) *fakeMatchRepository {
	repo := &fakeMatchRepository{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = m
	}
	return repo
}

func (r *fakeMatchRepository) sorted(filter func(*models.Match) bool) []*models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if filter(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeMatchRepository) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if match.ID == 0 {
		match.ID = len(r.matches) + 1000
	}
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	if r.GetByExternalIDFn != nil {
		return r.GetByExternalIDFn(ctx, externalID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ExternalID != nil && *m.ExternalID == externalID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepository) ListByGroup(ctx context.Context, group string) ([]*models.Match, error) {
	return r.sorted(func(m *models.Match) bool {
		return m.Phase == models.PhaseGroup && m.GroupLetter != nil && *m.GroupLetter == group
	}), nil
}

func (r *fakeMatchRepository) ListByPhase(ctx context.Context, phase models.MatchPhase) ([]*models.Match, error) {
	return r.sorted(func(m *models.Match) bool { return m.Phase == phase }), nil
}

func (r *fakeMatchRepository) ListKnockout(ctx context.Context) ([]*models.Match, error) {
	return r.sorted(func(m *models.Match) bool { return m.Phase.IsKnockout() }), nil
}

func (r *fakeMatchRepository) ListFinished(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Match, error) {
	return r.sorted(func(m *models.Match) bool { return m.Status.IsFinished() }), nil
}

func (r *fakeMatchRepository) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepository) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	if r.UpdateResultFn != nil {
		return r.UpdateResultFn(ctx, id, homeScore, awayScore, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	m.Status = status
	return nil
}

func (r *fakeMatchRepository) ResolveSlot(ctx context.Context, exec repositories.SQLExecutor, id int, side repositories.MatchSide, team string, flag *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	r.resolveCalls++
	if side == repositories.SideHome {
		m.HomeTeam = team
		m.HomeFlag = flag
		m.HomePlaceholder = nil
	} else {
		m.AwayTeam = team
		m.AwayFlag = flag
		m.AwayPlaceholder = nil
	}
	return nil
}

func (r *fakeMatchRepository) UpdateTeamFlag(ctx context.Context, team, flagURL string) error {
	return nil
}

func (r *fakeMatchRepository) DeleteByPhases(ctx context.Context, exec repositories.SQLExecutor, phases []models.MatchPhase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		for _, phase := range phases {
			if m.Phase == phase {
				delete(r.matches, id)
			}
		}
	}
	return nil
}

func (r *fakeMatchRepository) TotalGoals(ctx context.Context) (int, error) {
	total := 0
	for _, m := range r.sorted(func(m *models.Match) bool { return m.Scoreable() }) {
		total += *m.HomeScore + *m.AwayScore
	}
	return total, nil
}

// fakePredictionRepository keeps predictions keyed by (user, match).
type fakePredictionRepository struct {
	mu          sync.Mutex
	predictions map[[2]int]*models.Prediction
	nextID      int
}

func newFakePredictionRepository() *fakePredictionRepository {
	return &fakePredictionRepository{predictions: make(map[[2]int]*models.Prediction)}
}

func (r *fakePredictionRepository) Upsert(ctx context.Context, exec repositories.SQLExecutor, prediction *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{prediction.UserID, prediction.MatchID}
	if existing, ok := r.predictions[key]; ok {
		prediction.ID = existing.ID
	} else {
		r.nextID++
		prediction.ID = r.nextID
	}
	prediction.Points = 0
	copied := *prediction
	r.predictions[key] = &copied
	return nil
}

func (r *fakePredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.predictions[[2]int{userID, matchID}]
	if !ok {
		return nil, repositories.ErrPredictionNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePredictionRepository) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Prediction{}
	for _, p := range r.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePredictionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Prediction{}
	for _, p := range r.predictions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePredictionRepository) UpdatePoints(ctx context.Context, exec repositories.SQLExecutor, id, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.predictions {
		if p.ID == id {
			p.Points = points
			return nil
		}
	}
	return repositories.ErrPredictionNotFound
}

// fakeBracketRepository models brackets plus the per-match award ledger.
type fakeBracketRepository struct {
	mu       sync.Mutex
	brackets map[int]*models.UserBracket
	awards   map[[2]int]int // (bracketID, matchID) -> points
	nextID   int
}

func newFakeBracketRepository(brackets ...*models.UserBracket) *fakeBracketRepository {
	repo := &fakeBracketRepository{
		brackets: make(map[int]*models.UserBracket),
		awards:   make(map[[2]int]int),
	}
	for _, b := range brackets {
		if b.ID == 0 {
			repo.nextID++
			b.ID = repo.nextID
		} else if b.ID > repo.nextID {
			repo.nextID = b.ID
		}
		repo.brackets[b.ID] = b
	}
	return repo
}

func sameLeague(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeBracketRepository) Upsert(ctx context.Context, exec repositories.SQLExecutor, bracket *models.UserBracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brackets {
		if b.UserID == bracket.UserID && sameLeague(b.LeagueID, bracket.LeagueID) {
			bracket.ID = b.ID
			bracket.Points = b.Points
			r.brackets[b.ID] = bracket
			return nil
		}
	}
	r.nextID++
	bracket.ID = r.nextID
	r.brackets[bracket.ID] = bracket
	return nil
}

func (r *fakeBracketRepository) GetByUserAndLeague(ctx context.Context, userID int, leagueID *int) (*models.UserBracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brackets {
		if b.UserID == userID && sameLeague(b.LeagueID, leagueID) {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repositories.ErrBracketNotFound
}

func (r *fakeBracketRepository) ListAll(ctx context.Context, exec repositories.SQLExecutor) ([]*models.UserBracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.UserBracket, 0, len(r.brackets))
	for _, b := range r.brackets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBracketRepository) ListByLeague(ctx context.Context, leagueID *int) ([]*models.UserBracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.UserBracket{}
	for _, b := range r.brackets {
		if sameLeague(b.LeagueID, leagueID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBracketRepository) AddPoints(ctx context.Context, exec repositories.SQLExecutor, bracketID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brackets[bracketID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.Points += delta
	return nil
}

func (r *fakeBracketRepository) ResetAllPoints(ctx context.Context, exec repositories.SQLExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brackets {
		b.Points = 0
	}
	return nil
}

func (r *fakeBracketRepository) InsertAward(ctx context.Context, exec repositories.SQLExecutor, bracketID, matchID, points int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{bracketID, matchID}
	if _, ok := r.awards[key]; ok {
		return false, nil
	}
	r.awards[key] = points
	return true, nil
}

func (r *fakeBracketRepository) DeleteAllAwards(ctx context.Context, exec repositories.SQLExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards = make(map[[2]int]int)
	return nil
}

func (r *fakeBracketRepository) DeleteByLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.brackets {
		if b.LeagueID != nil && *b.LeagueID == leagueID {
			delete(r.brackets, id)
		}
	}
	return nil
}

// fakeLeagueRepository covers the participant checks the services need.
type fakeLeagueRepository struct {
	mu           sync.Mutex
	leagues      map[int]*models.League
	participants map[[2]int]*models.LeagueParticipant
}

func newFakeLeagueRepository() *fakeLeagueRepository {
	return &fakeLeagueRepository{
		leagues:      make(map[int]*models.League),
		participants: make(map[[2]int]*models.LeagueParticipant),
	}
}

func (r *fakeLeagueRepository) addParticipant(leagueID, userID int, blocked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[[2]int{leagueID, userID}] = &models.LeagueParticipant{
		LeagueID: leagueID,
		UserID:   userID,
		Blocked:  blocked,
	}
}

func (r *fakeLeagueRepository) Create(ctx context.Context, exec repositories.SQLExecutor, league *models.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	league.ID = len(r.leagues) + 1
	r.leagues[league.ID] = league
	return nil
}

func (r *fakeLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return l, nil
}

func (r *fakeLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeagueRepository) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.leagues, id)
	return nil
}

func (r *fakeLeagueRepository) AddParticipant(ctx context.Context, exec repositories.SQLExecutor, participant *models.LeagueParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{participant.LeagueID, participant.UserID}
	if _, ok := r.participants[key]; ok {
		return repositories.ErrParticipantConflict
	}
	r.participants[key] = participant
	return nil
}

func (r *fakeLeagueRepository) GetParticipant(ctx context.Context, leagueID, userID int) (*models.LeagueParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[[2]int{leagueID, userID}]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	return p, nil
}

func (r *fakeLeagueRepository) ListParticipants(ctx context.Context, leagueID int) ([]*models.LeagueParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.LeagueParticipant{}
	for _, p := range r.participants {
		if p.LeagueID == leagueID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeLeagueRepository) SetBlocked(ctx context.Context, leagueID, userID int, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[[2]int{leagueID, userID}]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Blocked = blocked
	return nil
}

func (r *fakeLeagueRepository) AddExtraPoints(ctx context.Context, leagueID, userID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[[2]int{leagueID, userID}]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.ExtraPoints += delta
	return nil
}

func (r *fakeLeagueRepository) DeleteParticipants(ctx context.Context, exec repositories.SQLExecutor, leagueID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.participants {
		if p.LeagueID == leagueID {
			delete(r.participants, key)
		}
	}
	return nil
}

// fakeRankingRepository serves fixed aggregates for ranking tests.
type fakeRankingRepository struct {
	users            []*models.User
	predictionPoints map[int]int
	bonusPoints      map[int]int
	extraPoints      map[int]int
}

func (r *fakeRankingRepository) UsersForScope(ctx context.Context, leagueID *int) ([]*models.User, error) {
	return r.users, nil
}

func (r *fakeRankingRepository) GetUser(ctx context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeRankingRepository) PredictionPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error) {
	if r.predictionPoints == nil {
		return map[int]int{}, nil
	}
	return r.predictionPoints, nil
}

func (r *fakeRankingRepository) BonusPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error) {
	if r.bonusPoints == nil {
		return map[int]int{}, nil
	}
	return r.bonusPoints, nil
}

func (r *fakeRankingRepository) ExtraPointsByUser(ctx context.Context, leagueID int) (map[int]int, error) {
	if r.extraPoints == nil {
		return map[int]int{}, nil
	}
	return r.extraPoints, nil
}
