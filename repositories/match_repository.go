package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tippliga/tippliga/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchConflict = errors.New("match conflict or invalid")
)

const matchColumns = `
	id, external_id, home_team, away_team, home_placeholder, away_placeholder,
	home_flag, away_flag, home_score, away_score, phase, group_letter, status,
	bracket_id, is_locked, kickoff_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Match, error)
	ListByGroup(ctx context.Context, group string) ([]*models.Match, error)
	ListByPhase(ctx context.Context, phase models.MatchPhase) ([]*models.Match, error)
	ListKnockout(ctx context.Context) ([]*models.Match, error)
	ListFinished(ctx context.Context, exec SQLExecutor) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error
	ResolveSlot(ctx context.Context, exec SQLExecutor, id int, side MatchSide, team string, flag *string) error
	UpdateTeamFlag(ctx context.Context, team, flagURL string) error
	DeleteByPhases(ctx context.Context, exec SQLExecutor, phases []models.MatchPhase) error
	TotalGoals(ctx context.Context) (int, error)
}

// MatchSide selects which half of a match row a slot resolution writes.
type MatchSide string

const (
	SideHome MatchSide = "home"
	SideAway MatchSide = "away"
)

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(external_id, home_team, away_team, home_placeholder, away_placeholder,
			 home_flag, away_flag, home_score, away_score, phase, group_letter,
			 status, bracket_id, is_locked, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		match.ExternalID, match.HomeTeam, match.AwayTeam,
		match.HomePlaceholder, match.AwayPlaceholder,
		match.HomeFlag, match.AwayFlag,
		match.HomeScore, match.AwayScore,
		match.Phase, match.GroupLetter, match.Status,
		match.BracketID, match.IsLocked, match.KickoffAt,
	).Scan(&match.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %v", ErrMatchConflict, err)
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := rowScanner.Scan(
		&m.ID, &m.ExternalID, &m.HomeTeam, &m.AwayTeam,
		&m.HomePlaceholder, &m.AwayPlaceholder,
		&m.HomeFlag, &m.AwayFlag,
		&m.HomeScore, &m.AwayScore,
		&m.Phase, &m.GroupLetter, &m.Status,
		&m.BracketID, &m.IsLocked, &m.KickoffAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE external_id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, group string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE phase = $1 AND group_letter = $2
		ORDER BY kickoff_at, id`
	return r.queryMatches(ctx, r.db, query, models.PhaseGroup, group)
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, phase models.MatchPhase) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE phase = $1 ORDER BY bracket_id, id`
	return r.queryMatches(ctx, r.db, query, phase)
}

func (r *postgresMatchRepository) ListKnockout(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE phase <> $1 ORDER BY bracket_id, id`
	return r.queryMatches(ctx, r.db, query, models.PhaseGroup)
}

// ListFinished returns every finished match ordered by id, the replay
// order used by full bracket recalculation.
func (r *postgresMatchRepository) ListFinished(ctx context.Context, exec SQLExecutor) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE status = ANY($1) ORDER BY id`
	return r.queryMatches(ctx, executor, query,
		pq.Array([]string{string(models.StatusFinished), string(models.StatusCompleted)}))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			external_id = $1, home_team = $2, away_team = $3,
			home_placeholder = $4, away_placeholder = $5,
			home_flag = $6, away_flag = $7,
			home_score = $8, away_score = $9,
			phase = $10, group_letter = $11, status = $12,
			bracket_id = $13, is_locked = $14, kickoff_at = $15
		WHERE id = $16`
	result, err := executor.ExecContext(ctx, query,
		match.ExternalID, match.HomeTeam, match.AwayTeam,
		match.HomePlaceholder, match.AwayPlaceholder,
		match.HomeFlag, match.AwayFlag,
		match.HomeScore, match.AwayScore,
		match.Phase, match.GroupLetter, match.Status,
		match.BracketID, match.IsLocked, match.KickoffAt,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET home_score = $1, away_score = $2, status = $3 WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, homeScore, awayScore, status, id)
	if err != nil {
		return fmt.Errorf("failed to update result of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ResolveSlot writes a resolved team into one side of a knockout match and
// clears that side's placeholder in the same statement, which is what
// makes a second promotion run observe a no-op.
func (r *postgresMatchRepository) ResolveSlot(ctx context.Context, exec SQLExecutor, id int, side MatchSide, team string, flag *string) error {
	executor := r.getExecutor(exec)
	var query string
	switch side {
	case SideHome:
		query = `UPDATE matches SET home_team = $1, home_flag = $2, home_placeholder = NULL WHERE id = $3`
	case SideAway:
		query = `UPDATE matches SET away_team = $1, away_flag = $2, away_placeholder = NULL WHERE id = $3`
	default:
		return fmt.Errorf("%w: unknown match side %q", ErrMatchConflict, side)
	}
	result, err := executor.ExecContext(ctx, query, team, flag, id)
	if err != nil {
		return fmt.Errorf("failed to resolve %s slot of match %d: %w", side, id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateTeamFlag(ctx context.Context, team, flagURL string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET home_flag = $1 WHERE home_team = $2`, flagURL, team)
	if err != nil {
		return fmt.Errorf("failed to update home flag for %s: %w", team, err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE matches SET away_flag = $1 WHERE away_team = $2`, flagURL, team)
	if err != nil {
		return fmt.Errorf("failed to update away flag for %s: %w", team, err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByPhases(ctx context.Context, exec SQLExecutor, phases []models.MatchPhase) error {
	executor := r.getExecutor(exec)
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = string(p)
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE phase = ANY($1)`, pq.Array(names))
	if err != nil {
		return fmt.Errorf("failed to delete matches by phase: %w", err)
	}
	return nil
}

// TotalGoals sums every goal of every finished match, the reference value
// for the ranking tie-breaker guess.
func (r *postgresMatchRepository) TotalGoals(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(SUM(home_score + away_score), 0)
		FROM matches
		WHERE status = ANY($1) AND home_score IS NOT NULL AND away_score IS NOT NULL`
	var total int
	err := r.db.QueryRowContext(ctx, query,
		pq.Array([]string{string(models.StatusFinished), string(models.StatusCompleted)})).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum total goals: %w", err)
	}
	return total, nil
}
