package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tippliga/tippliga/models"
)

var (
	ErrLeagueNotFound      = errors.New("league not found")
	ErrParticipantNotFound = errors.New("league participant not found")
	ErrParticipantConflict = errors.New("user is already a participant of this league")
)

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddParticipant(ctx context.Context, exec SQLExecutor, participant *models.LeagueParticipant) error
	GetParticipant(ctx context.Context, leagueID, userID int) (*models.LeagueParticipant, error)
	ListParticipants(ctx context.Context, leagueID int) ([]*models.LeagueParticipant, error)
	SetBlocked(ctx context.Context, leagueID, userID int, blocked bool) error
	AddExtraPoints(ctx context.Context, leagueID, userID, delta int) error
	DeleteParticipants(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	executor := r.getExecutor(exec)
	if league.CreatedAt.IsZero() {
		league.CreatedAt = time.Now()
	}
	err := executor.QueryRowContext(ctx, `
		INSERT INTO leagues (name, access_code_hash, created_at)
		VALUES ($1, $2, $3) RETURNING id`,
		league.Name, league.AccessCodeHash, league.CreatedAt,
	).Scan(&league.ID)
	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	l := &models.League{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, access_code_hash, created_at FROM leagues WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.AccessCodeHash, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", id, err)
	}
	return l, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, access_code_hash, created_at FROM leagues ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l := &models.League{}
		if err := rows.Scan(&l.ID, &l.Name, &l.AccessCodeHash, &l.CreatedAt); err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete league %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) AddParticipant(ctx context.Context, exec SQLExecutor, participant *models.LeagueParticipant) error {
	executor := r.getExecutor(exec)
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now()
	}
	err := executor.QueryRowContext(ctx, `
		INSERT INTO league_participants (league_id, user_id, blocked, extra_points, joined_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		participant.LeagueID, participant.UserID, participant.Blocked,
		participant.ExtraPoints, participant.JoinedAt,
	).Scan(&participant.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrParticipantConflict
		}
		return fmt.Errorf("failed to add participant u:%d to league %d: %w", participant.UserID, participant.LeagueID, err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetParticipant(ctx context.Context, leagueID, userID int) (*models.LeagueParticipant, error) {
	p := &models.LeagueParticipant{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, league_id, user_id, blocked, extra_points, joined_at
		FROM league_participants WHERE league_id = $1 AND user_id = $2`,
		leagueID, userID,
	).Scan(&p.ID, &p.LeagueID, &p.UserID, &p.Blocked, &p.ExtraPoints, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to load participant u:%d l:%d: %w", userID, leagueID, err)
	}
	return p, nil
}

func (r *postgresLeagueRepository) ListParticipants(ctx context.Context, leagueID int) ([]*models.LeagueParticipant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, league_id, user_id, blocked, extra_points, joined_at
		FROM league_participants WHERE league_id = $1 ORDER BY joined_at, id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.LeagueParticipant, 0)
	for rows.Next() {
		p := &models.LeagueParticipant{}
		if err := rows.Scan(&p.ID, &p.LeagueID, &p.UserID, &p.Blocked, &p.ExtraPoints, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresLeagueRepository) SetBlocked(ctx context.Context, leagueID, userID int, blocked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE league_participants SET blocked = $1 WHERE league_id = $2 AND user_id = $3`,
		blocked, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to set blocked for u:%d l:%d: %w", userID, leagueID, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresLeagueRepository) AddExtraPoints(ctx context.Context, leagueID, userID, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE league_participants SET extra_points = extra_points + $1 WHERE league_id = $2 AND user_id = $3`,
		delta, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to add extra points for u:%d l:%d: %w", userID, leagueID, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresLeagueRepository) DeleteParticipants(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM league_participants WHERE league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("failed to delete participants of league %d: %w", leagueID, err)
	}
	return nil
}
