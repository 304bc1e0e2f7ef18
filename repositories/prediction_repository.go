package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tippliga/tippliga/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

type PredictionRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error
	GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Prediction, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	UpdatePoints(ctx context.Context, exec SQLExecutor, id, points int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert creates the (user, match) prediction or overwrites the guess on
// resubmission. Points are reset to 0 on every write; scoring recomputes
// them once the match finishes.
func (r *postgresPredictionRepository) Upsert(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO predictions (user_id, match_id, home_score, away_score, points, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (user_id, match_id) DO UPDATE
			SET home_score = EXCLUDED.home_score,
			    away_score = EXCLUDED.away_score,
			    points = 0,
			    updated_at = EXCLUDED.updated_at
		RETURNING id`
	if prediction.UpdatedAt.IsZero() {
		prediction.UpdatedAt = time.Now()
	}
	err := executor.QueryRowContext(ctx, query,
		prediction.UserID, prediction.MatchID,
		prediction.HomeScore, prediction.AwayScore, prediction.UpdatedAt,
	).Scan(&prediction.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction u:%d m:%d: %w", prediction.UserID, prediction.MatchID, err)
	}
	return nil
}

func (r *postgresPredictionRepository) scanPrediction(rowScanner interface{ Scan(...interface{}) error }) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := rowScanner.Scan(&p.ID, &p.UserID, &p.MatchID, &p.HomeScore, &p.AwayScore, &p.Points, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, home_score, away_score, points, updated_at
		FROM predictions WHERE user_id = $1 AND match_id = $2`
	return r.scanPrediction(r.db.QueryRowContext(ctx, query, userID, matchID))
}

func (r *postgresPredictionRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Prediction, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, user_id, match_id, home_score, away_score, points, updated_at
		FROM predictions WHERE match_id = $1 ORDER BY id`
	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, errScan := r.scanPrediction(rows)
		if errScan != nil {
			return nil, errScan
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, home_score, away_score, points, updated_at
		FROM predictions WHERE user_id = $1 ORDER BY match_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, errScan := r.scanPrediction(rows)
		if errScan != nil {
			return nil, errScan
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *postgresPredictionRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, id, points int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE predictions SET points = $1, updated_at = $2 WHERE id = $3`, points, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update points of prediction %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}
