package services

import "errors"

// Общие ошибки сервисного слоя и их маппинг на HTTP живёт в handlers.
var (
	// Ресурс не найден
	ErrNotFound              = errors.New("requested resource not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrLeagueNotFound        = errors.New("league not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrBracketNotFound       = errors.New("user bracket not found")
	ErrBonusQuestionNotFound = errors.New("bonus question not found")
	ErrParticipantNotFound   = errors.New("league participant not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidScore       = errors.New("score must be a non-negative integer")
	ErrInvalidStatus      = errors.New("invalid match status")
	ErrInvalidPhase       = errors.New("invalid match phase")
	ErrLeagueNameRequired = errors.New("league name is required")
	ErrEmptyPicks         = errors.New("bracket picks must not be empty")
	ErrPredictionClosed   = errors.New("predictions are closed for this match")
	ErrBracketClosed      = errors.New("bracket picks are closed, knockout play has started")

	// Ошибки доступа
	ErrParticipantBlocked = errors.New("participant is blocked in this league")
	ErrAccessCodeInvalid  = errors.New("invalid league access code")

	// Конфликты
	ErrAlreadyParticipant = errors.New("user is already a participant of this league")

	// Пересчёт сетки: прерывание оставляет суммы в переходном состоянии,
	// вызывающий обязан повторить операцию целиком.
	ErrRecalculationFailed = errors.New("bracket recalculation failed and must be rerun in full")
)
