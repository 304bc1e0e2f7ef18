package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tippliga/tippliga/models"
)

var (
	ErrBonusQuestionNotFound = errors.New("bonus question not found")
	ErrBonusAnswerNotFound   = errors.New("bonus answer not found")
)

type BonusRepository interface {
	CreateQuestion(ctx context.Context, question *models.BonusQuestion) error
	GetQuestion(ctx context.Context, id int) (*models.BonusQuestion, error)
	ListQuestions(ctx context.Context, leagueID *int) ([]*models.BonusQuestion, error)
	SetCorrectAnswer(ctx context.Context, exec SQLExecutor, questionID int, answer string) error

	UpsertAnswer(ctx context.Context, answer *models.BonusAnswer) error
	ListAnswers(ctx context.Context, exec SQLExecutor, questionID int) ([]*models.BonusAnswer, error)
	UpdateAnswerPoints(ctx context.Context, exec SQLExecutor, answerID, points int) error
}

type postgresBonusRepository struct {
	db *sql.DB
}

func NewPostgresBonusRepository(db *sql.DB) BonusRepository {
	return &postgresBonusRepository{db: db}
}

func (r *postgresBonusRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBonusRepository) CreateQuestion(ctx context.Context, question *models.BonusQuestion) error {
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bonus_questions (league_id, question, points, correct_answer, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		question.LeagueID, question.Question, question.Points, question.CorrectAnswer, question.CreatedAt,
	).Scan(&question.ID)
	if err != nil {
		return fmt.Errorf("failed to create bonus question: %w", err)
	}
	return nil
}

func (r *postgresBonusRepository) GetQuestion(ctx context.Context, id int) (*models.BonusQuestion, error) {
	q := &models.BonusQuestion{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, league_id, question, points, correct_answer, created_at
		FROM bonus_questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.LeagueID, &q.Question, &q.Points, &q.CorrectAnswer, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBonusQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load bonus question %d: %w", id, err)
	}
	return q, nil
}

// ListQuestions returns the question set for a scope: league questions for
// a league, global questions (league_id IS NULL) otherwise.
func (r *postgresBonusRepository) ListQuestions(ctx context.Context, leagueID *int) ([]*models.BonusQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, league_id, question, points, correct_answer, created_at
		FROM bonus_questions
		WHERE league_id IS NOT DISTINCT FROM $1
		ORDER BY id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*models.BonusQuestion, 0)
	for rows.Next() {
		q := &models.BonusQuestion{}
		if err := rows.Scan(&q.ID, &q.LeagueID, &q.Question, &q.Points, &q.CorrectAnswer, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *postgresBonusRepository) SetCorrectAnswer(ctx context.Context, exec SQLExecutor, questionID int, answer string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE bonus_questions SET correct_answer = $1 WHERE id = $2`, answer, questionID)
	if err != nil {
		return fmt.Errorf("failed to resolve bonus question %d: %w", questionID, err)
	}
	return checkAffectedRows(result, ErrBonusQuestionNotFound)
}

func (r *postgresBonusRepository) UpsertAnswer(ctx context.Context, answer *models.BonusAnswer) error {
	if answer.UpdatedAt.IsZero() {
		answer.UpdatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bonus_answers (question_id, user_id, answer, points, updated_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (question_id, user_id) DO UPDATE
			SET answer = EXCLUDED.answer, points = 0, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		answer.QuestionID, answer.UserID, answer.Answer, answer.UpdatedAt,
	).Scan(&answer.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert bonus answer u:%d q:%d: %w", answer.UserID, answer.QuestionID, err)
	}
	return nil
}

func (r *postgresBonusRepository) ListAnswers(ctx context.Context, exec SQLExecutor, questionID int) ([]*models.BonusAnswer, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT id, question_id, user_id, answer, points, updated_at
		FROM bonus_answers WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]*models.BonusAnswer, 0)
	for rows.Next() {
		a := &models.BonusAnswer{}
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Answer, &a.Points, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *postgresBonusRepository) UpdateAnswerPoints(ctx context.Context, exec SQLExecutor, answerID, points int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE bonus_answers SET points = $1, updated_at = $2 WHERE id = $3`,
		points, time.Now(), answerID)
	if err != nil {
		return fmt.Errorf("failed to update points of bonus answer %d: %w", answerID, err)
	}
	return checkAffectedRows(result, ErrBonusAnswerNotFound)
}
