package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/reporting"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

var (
	badRequestErrors = []error{
		errBadRequest,
		domain.ErrInvalidDate,
		domain.ErrInvalidWeekday,
		domain.ErrInvalidStatus,
		domain.ErrInvalidName,
		domain.ErrInvalidEmail,
		domain.ErrInvalidTeamCount,
		domain.ErrInvalidSide,
		domain.ErrUnknownTeam,
	}
	notFoundErrors = []error{
		domain.ErrPlayerNotFound,
		domain.ErrSessionNotFound,
		domain.ErrSubscriptionNotFound,
		domain.ErrAdminNotFound,
		domain.ErrMiniGameNotFound,
		domain.ErrGoalNotFound,
		domain.ErrMatchNotFound,
	}
	conflictErrors = []error{
		domain.ErrSessionExists,
		domain.ErrMiniGameExists,
		domain.ErrBracketExists,
		domain.ErrMiniGameLocked,
		domain.ErrMiniGameNotLive,
		domain.ErrLiveGameInProgress,
		domain.ErrNoBracket,
		domain.ErrMatchNotReady,
		domain.ErrMatchAlreadyResolved,
	}
	unprocessableErrors = []error{
		domain.ErrWrongPlayerCount,
		domain.ErrTeamFull,
		domain.ErrPlayerAlreadyAssigned,
		domain.ErrPlayerNotOnTeam,
		domain.ErrPlayerNotParticipating,
		domain.ErrSameTeam,
		domain.ErrNegativeScore,
		domain.ErrScoreGoalMismatch,
		domain.ErrAssisterIsScorer,
		domain.ErrIneligiblePlayer,
		domain.ErrInvalidWinner,
		domain.ErrWinnerRequired,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps an error to a status code and a cause safe to show the admin
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		return http.StatusServiceUnavailable, "temporarily unavailable, try again"
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest, err.Error()
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, err.Error()
	case isAny(err, conflictErrors):
		return http.StatusConflict, err.Error()
	case isAny(err, unprocessableErrors):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	statusCode, cause := statusFor(err)
	if statusCode == http.StatusInternalServerError {
		// NOTE: The app and adapters handle their own error reporting
		logging.FromContext(ctx).ErrorContext(ctx, "Request failed", "error", err.Error())
	} else {
		logging.FromContext(ctx).InfoContext(ctx, "Request rejected", "status", statusCode, "error", err.Error())
	}
	writeJSON(ctx, w, statusCode, errorResponse{Success: false, Cause: cause})
}

func decodeJSON[T any](r *http.Request, w http.ResponseWriter) (T, error) {
	var body T
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		return body, fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return body, nil
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be left out
func decodeOptionalJSON[T any](r *http.Request, w http.ResponseWriter) (T, error) {
	body, err := decodeJSON[T](r, w)
	if errors.Is(err, io.EOF) {
		var empty T
		return empty, nil
	}
	return body, err
}

type successResponse struct {
	Success bool `json:"success"`
}
