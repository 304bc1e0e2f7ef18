package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
)

type BonusService interface {
	CreateQuestion(ctx context.Context, leagueID *int, question string, points int) (*models.BonusQuestion, error)
	ListQuestions(ctx context.Context, leagueID *int) ([]*models.BonusQuestion, error)

	// SubmitAnswer stores a user's answer; blocked league participants
	// are rejected before any write, and resolved questions are closed.
	SubmitAnswer(ctx context.Context, questionID, userID int, answer string) (*models.BonusAnswer, error)

	// ResolveQuestion sets the correct answer and pays the question's
	// points to every matching answer (case-insensitive), zeroing the
	// rest, in one transaction.
	ResolveQuestion(ctx context.Context, questionID int, correctAnswer string) error
}

type bonusService struct {
	db         *sql.DB
	bonusRepo  repositories.BonusRepository
	leagueRepo repositories.LeagueRepository
	logger     *slog.Logger
}

func NewBonusService(
	db *sql.DB,
	bonusRepo repositories.BonusRepository,
	leagueRepo repositories.LeagueRepository,
	logger *slog.Logger,
) BonusService {
	return &bonusService{
		db:         db,
		bonusRepo:  bonusRepo,
		leagueRepo: leagueRepo,
		logger:     logger,
	}
}

func (s *bonusService) CreateQuestion(ctx context.Context, leagueID *int, question string, points int) (*models.BonusQuestion, error) {
	if strings.TrimSpace(question) == "" || points <= 0 {
		return nil, fmt.Errorf("%w: question text and positive points required", ErrValidationFailed)
	}
	q := &models.BonusQuestion{LeagueID: leagueID, Question: question, Points: points}
	if err := s.bonusRepo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *bonusService) ListQuestions(ctx context.Context, leagueID *int) ([]*models.BonusQuestion, error) {
	questions, err := s.bonusRepo.ListQuestions(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonus questions: %w", err)
	}
	return questions, nil
}

func (s *bonusService) SubmitAnswer(ctx context.Context, questionID, userID int, answer string) (*models.BonusAnswer, error) {
	question, err := s.bonusRepo.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, repositories.ErrBonusQuestionNotFound) {
			return nil, ErrBonusQuestionNotFound
		}
		return nil, err
	}
	if question.CorrectAnswer != nil {
		return nil, fmt.Errorf("%w: question already resolved", ErrValidationFailed)
	}

	if question.LeagueID != nil {
		participant, err := s.leagueRepo.GetParticipant(ctx, *question.LeagueID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return nil, ErrParticipantNotFound
			}
			return nil, fmt.Errorf("failed to check league membership: %w", err)
		}
		if participant.Blocked {
			return nil, ErrParticipantBlocked
		}
	}

	bonusAnswer := &models.BonusAnswer{QuestionID: questionID, UserID: userID, Answer: answer}
	if err := s.bonusRepo.UpsertAnswer(ctx, bonusAnswer); err != nil {
		return nil, err
	}
	return bonusAnswer, nil
}

func (s *bonusService) ResolveQuestion(ctx context.Context, questionID int, correctAnswer string) error {
	question, err := s.bonusRepo.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, repositories.ErrBonusQuestionNotFound) {
			return ErrBonusQuestionNotFound
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bonus resolution: %w", err)
	}
	defer tx.Rollback()

	if err := s.bonusRepo.SetCorrectAnswer(ctx, tx, questionID, correctAnswer); err != nil {
		return err
	}

	answers, err := s.bonusRepo.ListAnswers(ctx, tx, questionID)
	if err != nil {
		return fmt.Errorf("failed to list answers of question %d: %w", questionID, err)
	}

	awarded := 0
	for _, answer := range answers {
		points := 0
		if strings.EqualFold(strings.TrimSpace(answer.Answer), strings.TrimSpace(correctAnswer)) {
			points = question.Points
			awarded++
		}
		if points == answer.Points {
			continue
		}
		if err := s.bonusRepo.UpdateAnswerPoints(ctx, tx, answer.ID, points); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bonus resolution: %w", err)
	}
	s.logger.Info("bonus question resolved",
		slog.Int("question_id", questionID),
		slog.Int("correct_answers", awarded))
	return nil
}
