package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tippliga/tippliga/models"
)

var ErrUserNotFound = errors.New("user not found")

// RankingRepository provides the aggregate reads the ranking service
// merges into leaderboard rows. All sums are computed in SQL; the
// cross-component assembly and tie-breaking happen in the service.
type RankingRepository interface {
	UsersForScope(ctx context.Context, leagueID *int) ([]*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	PredictionPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error)
	BonusPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error)
	ExtraPointsByUser(ctx context.Context, leagueID int) (map[int]int, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func finishedStatuses() interface{} {
	return pq.Array([]string{string(models.StatusFinished), string(models.StatusCompleted)})
}

// UsersForScope lists league participants for a league scope, or every
// known user for the global scope.
func (r *postgresRankingRepository) UsersForScope(ctx context.Context, leagueID *int) ([]*models.User, error) {
	var rows *sql.Rows
	var err error
	if leagueID != nil {
		rows, err = r.db.QueryContext(ctx, `
			SELECT u.id, u.name, u.total_goals_guess
			FROM users u
			JOIN league_participants lp ON lp.user_id = u.id
			WHERE lp.league_id = $1
			ORDER BY u.id`, *leagueID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, name, total_goals_guess FROM users ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.TotalGoalsGuess); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRankingRepository) GetUser(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, total_goals_guess FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.TotalGoalsGuess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresRankingRepository) sumByUser(ctx context.Context, query string, args ...interface{}) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[int]int)
	for rows.Next() {
		var userID, points int
		if err := rows.Scan(&userID, &points); err != nil {
			return nil, err
		}
		sums[userID] = points
	}
	return sums, rows.Err()
}

// PredictionPointsByUser sums stored prediction points, joined against the
// match state so a stale point value on a reopened match never counts.
func (r *postgresRankingRepository) PredictionPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error) {
	if leagueID != nil {
		return r.sumByUser(ctx, `
			SELECT p.user_id, COALESCE(SUM(p.points), 0)
			FROM predictions p
			JOIN matches m ON m.id = p.match_id
			JOIN league_participants lp ON lp.user_id = p.user_id
			WHERE m.status = ANY($1) AND lp.league_id = $2
			GROUP BY p.user_id`, finishedStatuses(), *leagueID)
	}
	return r.sumByUser(ctx, `
		SELECT p.user_id, COALESCE(SUM(p.points), 0)
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE m.status = ANY($1)
		GROUP BY p.user_id`, finishedStatuses())
}

func (r *postgresRankingRepository) BonusPointsByUser(ctx context.Context, leagueID *int) (map[int]int, error) {
	return r.sumByUser(ctx, `
		SELECT a.user_id, COALESCE(SUM(a.points), 0)
		FROM bonus_answers a
		JOIN bonus_questions q ON q.id = a.question_id
		WHERE q.league_id IS NOT DISTINCT FROM $1
		GROUP BY a.user_id`, leagueID)
}

func (r *postgresRankingRepository) ExtraPointsByUser(ctx context.Context, leagueID int) (map[int]int, error) {
	return r.sumByUser(ctx, `
		SELECT user_id, extra_points
		FROM league_participants
		WHERE league_id = $1`, leagueID)
}
