package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tippliga/tippliga/models"
	"github.com/tippliga/tippliga/repositories"
	"github.com/tippliga/tippliga/utils"
)

type LeagueService interface {
	// CreateLeague issues a fresh access code and returns it once, in the
	// clear; only its hash is stored.
	CreateLeague(ctx context.Context, name string) (*models.League, string, error)

	// JoinLeague verifies the access code and adds the user. The code is
	// checked before any membership write.
	JoinLeague(ctx context.Context, leagueID, userID int, accessCode string) (*models.LeagueParticipant, error)

	ListParticipants(ctx context.Context, leagueID int) ([]*models.LeagueParticipant, error)
	SetParticipantBlocked(ctx context.Context, leagueID, userID int, blocked bool) error
	AssignExtraPoints(ctx context.Context, leagueID, userID, delta int) error

	// DeleteLeague tears a league down: its brackets (with their awards),
	// participants and the league row go in one transaction. Predictions
	// are global per user and survive.
	DeleteLeague(ctx context.Context, leagueID int) error
}

type leagueService struct {
	db          *sql.DB
	leagueRepo  repositories.LeagueRepository
	bracketRepo repositories.BracketRepository
	logger      *slog.Logger
}

func NewLeagueService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	bracketRepo repositories.BracketRepository,
	logger *slog.Logger,
) LeagueService {
	return &leagueService{
		db:          db,
		leagueRepo:  leagueRepo,
		bracketRepo: bracketRepo,
		logger:      logger,
	}
}

func (s *leagueService) CreateLeague(ctx context.Context, name string) (*models.League, string, error) {
	if name == "" {
		return nil, "", ErrLeagueNameRequired
	}

	accessCode := uuid.NewString()
	hash, err := utils.HashAccessCode(accessCode)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash access code: %w", err)
	}

	league := &models.League{Name: name, AccessCodeHash: hash}
	if err := s.leagueRepo.Create(ctx, nil, league); err != nil {
		return nil, "", fmt.Errorf("failed to create league: %w", err)
	}

	s.logger.Info("league created", slog.Int("league_id", league.ID), slog.String("name", name))
	return league, accessCode, nil
}

func (s *leagueService) JoinLeague(ctx context.Context, leagueID, userID int, accessCode string) (*models.LeagueParticipant, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	if !utils.CheckAccessCode(accessCode, league.AccessCodeHash) {
		return nil, ErrAccessCodeInvalid
	}

	participant := &models.LeagueParticipant{LeagueID: leagueID, UserID: userID}
	if err := s.leagueRepo.AddParticipant(ctx, nil, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("failed to join league %d: %w", leagueID, err)
	}
	return participant, nil
}

func (s *leagueService) ListParticipants(ctx context.Context, leagueID int) ([]*models.LeagueParticipant, error) {
	participants, err := s.leagueRepo.ListParticipants(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of league %d: %w", leagueID, err)
	}
	return participants, nil
}

func (s *leagueService) SetParticipantBlocked(ctx context.Context, leagueID, userID int, blocked bool) error {
	err := s.leagueRepo.SetBlocked(ctx, leagueID, userID, blocked)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to set blocked state: %w", err)
	}
	return nil
}

func (s *leagueService) AssignExtraPoints(ctx context.Context, leagueID, userID, delta int) error {
	err := s.leagueRepo.AddExtraPoints(ctx, leagueID, userID, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to assign extra points: %w", err)
	}
	return nil
}

func (s *leagueService) DeleteLeague(ctx context.Context, leagueID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin league teardown: %w", err)
	}
	defer tx.Rollback()

	if err := s.bracketRepo.DeleteByLeague(ctx, tx, leagueID); err != nil {
		return err
	}
	if err := s.leagueRepo.DeleteParticipants(ctx, tx, leagueID); err != nil {
		return err
	}
	if err := s.leagueRepo.Delete(ctx, tx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit league teardown: %w", err)
	}
	s.logger.Info("league deleted", slog.Int("league_id", leagueID))
	return nil
}
