package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tippliga/tippliga/models"
)

var ErrBracketNotFound = errors.New("user bracket not found")

type BracketRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, bracket *models.UserBracket) error
	GetByUserAndLeague(ctx context.Context, userID int, leagueID *int) (*models.UserBracket, error)
	ListAll(ctx context.Context, exec SQLExecutor) ([]*models.UserBracket, error)
	ListByLeague(ctx context.Context, leagueID *int) ([]*models.UserBracket, error)
	AddPoints(ctx context.Context, exec SQLExecutor, bracketID, delta int) error
	ResetAllPoints(ctx context.Context, exec SQLExecutor) error
	InsertAward(ctx context.Context, exec SQLExecutor, bracketID, matchID, points int) (bool, error)
	DeleteAllAwards(ctx context.Context, exec SQLExecutor) error
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert stores a pick set; the partial unique indexes on (user_id,
// league_id) and (user_id) WHERE league_id IS NULL enforce one bracket per
// user per scope. Picks may be resubmitted pre-lock; points are preserved.
func (r *postgresBracketRepository) Upsert(ctx context.Context, exec SQLExecutor, bracket *models.UserBracket) error {
	executor := r.getExecutor(exec)
	if bracket.UpdatedAt.IsZero() {
		bracket.UpdatedAt = time.Now()
	}

	existing, err := r.getForUpdate(ctx, executor, bracket.UserID, bracket.LeagueID)
	if err != nil && !errors.Is(err, ErrBracketNotFound) {
		return err
	}
	if existing != nil {
		query := `UPDATE user_brackets SET picks = $1, updated_at = $2 WHERE id = $3`
		if _, err := executor.ExecContext(ctx, query, bracket.Picks, bracket.UpdatedAt, existing.ID); err != nil {
			return fmt.Errorf("failed to update bracket %d: %w", existing.ID, err)
		}
		bracket.ID = existing.ID
		bracket.Points = existing.Points
		return nil
	}

	query := `
		INSERT INTO user_brackets (user_id, league_id, picks, points, updated_at)
		VALUES ($1, $2, $3, 0, $4)
		RETURNING id`
	err = executor.QueryRowContext(ctx, query,
		bracket.UserID, bracket.LeagueID, bracket.Picks, bracket.UpdatedAt,
	).Scan(&bracket.ID)
	if err != nil {
		return fmt.Errorf("failed to create bracket for user %d: %w", bracket.UserID, err)
	}
	return nil
}

func (r *postgresBracketRepository) scanBracket(rowScanner interface{ Scan(...interface{}) error }) (*models.UserBracket, error) {
	b := &models.UserBracket{}
	err := rowScanner.Scan(&b.ID, &b.UserID, &b.LeagueID, &b.Picks, &b.Points, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *postgresBracketRepository) getForUpdate(ctx context.Context, exec SQLExecutor, userID int, leagueID *int) (*models.UserBracket, error) {
	query := `
		SELECT id, user_id, league_id, picks, points, updated_at
		FROM user_brackets
		WHERE user_id = $1 AND league_id IS NOT DISTINCT FROM $2`
	return r.scanBracket(exec.QueryRowContext(ctx, query, userID, leagueID))
}

func (r *postgresBracketRepository) GetByUserAndLeague(ctx context.Context, userID int, leagueID *int) (*models.UserBracket, error) {
	return r.getForUpdate(ctx, r.db, userID, leagueID)
}

func (r *postgresBracketRepository) queryBrackets(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.UserBracket, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brackets := make([]*models.UserBracket, 0)
	for rows.Next() {
		b, errScan := r.scanBracket(rows)
		if errScan != nil {
			return nil, errScan
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

// ListAll returns every bracket across every league; bracket scoring is
// system-wide by design.
func (r *postgresBracketRepository) ListAll(ctx context.Context, exec SQLExecutor) ([]*models.UserBracket, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, user_id, league_id, picks, points, updated_at FROM user_brackets ORDER BY id`
	return r.queryBrackets(ctx, executor, query)
}

func (r *postgresBracketRepository) ListByLeague(ctx context.Context, leagueID *int) ([]*models.UserBracket, error) {
	query := `
		SELECT id, user_id, league_id, picks, points, updated_at
		FROM user_brackets
		WHERE league_id IS NOT DISTINCT FROM $1
		ORDER BY id`
	return r.queryBrackets(ctx, r.db, query, leagueID)
}

func (r *postgresBracketRepository) AddPoints(ctx context.Context, exec SQLExecutor, bracketID, delta int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE user_brackets SET points = points + $1, updated_at = $2 WHERE id = $3`,
		delta, time.Now(), bracketID)
	if err != nil {
		return fmt.Errorf("failed to add points to bracket %d: %w", bracketID, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) ResetAllPoints(ctx context.Context, exec SQLExecutor) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `UPDATE user_brackets SET points = 0`); err != nil {
		return fmt.Errorf("failed to reset bracket points: %w", err)
	}
	return nil
}

// InsertAward records that a bracket has been paid out for a match.
// Returns false when the (bracket, match) pair was already recorded, which
// is the at-most-once guard for the additive award path.
func (r *postgresBracketRepository) InsertAward(ctx context.Context, exec SQLExecutor, bracketID, matchID, points int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_awards (bracket_id, match_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (bracket_id, match_id) DO NOTHING`
	result, err := executor.ExecContext(ctx, query, bracketID, matchID, points)
	if err != nil {
		return false, fmt.Errorf("failed to record award b:%d m:%d: %w", bracketID, matchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check award insert: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresBracketRepository) DeleteAllAwards(ctx context.Context, exec SQLExecutor) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM bracket_awards`); err != nil {
		return fmt.Errorf("failed to clear bracket awards: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `
		DELETE FROM bracket_awards WHERE bracket_id IN
			(SELECT id FROM user_brackets WHERE league_id = $1)`, leagueID)
	if err != nil {
		return fmt.Errorf("failed to delete awards for league %d: %w", leagueID, err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM user_brackets WHERE league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("failed to delete brackets for league %d: %w", leagueID, err)
	}
	return nil
}
