package domain

import "errors"

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionExists          = errors.New("session already exists")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrAdminNotFound          = errors.New("admin not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)

// Validation errors. These are returned to the caller as-is and are never reported.
var (
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidWeekday         = errors.New("invalid weekday")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidName            = errors.New("invalid name")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrWrongPlayerCount       = errors.New("wrong player count")
	ErrInvalidTeamCount       = errors.New("invalid team count")
	ErrUnknownTeam            = errors.New("unknown team")
	ErrTeamFull               = errors.New("team is full")
	ErrPlayerAlreadyAssigned  = errors.New("player is already on a team")
	ErrPlayerNotOnTeam        = errors.New("player is not on team")
	ErrPlayerNotParticipating = errors.New("player is not participating")
	ErrSameTeam               = errors.New("a mini-game needs two different teams")
	ErrMiniGameNotFound       = errors.New("mini-game not found")
	ErrMiniGameExists         = errors.New("mini-game already exists")
	ErrMiniGameLocked         = errors.New("mini-game is locked")
	ErrMiniGameNotLive        = errors.New("mini-game is not live")
	ErrLiveGameInProgress     = errors.New("a mini-game is live")
	ErrNegativeScore          = errors.New("score cannot be negative")
	ErrInvalidSide            = errors.New("invalid side")
	ErrScoreGoalMismatch      = errors.New("scores do not match the entered goals")
	ErrAssisterIsScorer       = errors.New("assister cannot be the scorer")
	ErrIneligiblePlayer       = errors.New("player is not eligible in this mini-game")
	ErrGoalNotFound           = errors.New("goal not found")
	ErrNoBracket              = errors.New("session has no knockout bracket")
	ErrBracketExists          = errors.New("session already has a knockout bracket")
	ErrMatchNotFound          = errors.New("knockout match not found")
	ErrMatchNotReady          = errors.New("knockout match teams are not decided yet")
	ErrMatchAlreadyResolved   = errors.New("knockout match is already resolved")
	ErrInvalidWinner          = errors.New("winner is not playing in this match")
	ErrWinnerRequired         = errors.New("a tied knockout match needs an explicit winner")
)
