package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the lifecycle state of a game day or tournament.
//
// The integer values are what gets persisted.
type Status int

const (
	StatusDraft Status = iota
	StatusUpcoming
	StatusLive
	StatusCompleted
	StatusNotCompleted
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusUpcoming:
		return "upcoming"
	case StatusLive:
		return "live"
	case StatusCompleted:
		return "completed"
	case StatusNotCompleted:
		return "not-completed"
	default:
		return fmt.Sprintf("<invalid status>(%d)", int(s))
	}
}

func (s Status) Valid() bool {
	return s >= StatusDraft && s <= StatusNotCompleted
}

var statusSynonyms = map[string]Status{
	"draft":         StatusDraft,
	"upcoming":      StatusUpcoming,
	"scheduled":     StatusUpcoming,
	"live":          StatusLive,
	"in_progress":   StatusLive,
	"in-progress":   StatusLive,
	"active":        StatusLive,
	"completed":     StatusCompleted,
	"finished":      StatusCompleted,
	"done":          StatusCompleted,
	"not-completed": StatusNotCompleted,
	"not_completed": StatusNotCompleted,
	"notcompleted":  StatusNotCompleted,
	"cancelled":     StatusNotCompleted,
	"canceled":      StatusNotCompleted,
}

// ParseStatus normalizes a stored status value.
//
// Older documents store the status as a string synonym, newer ones as an integer.
// Both are accepted here so nothing past the storage boundary has to care.
func ParseStatus(raw any) (Status, error) {
	var status Status
	switch v := raw.(type) {
	case Status:
		status = v
	case int:
		status = Status(v)
	case int32:
		status = Status(v)
	case int64:
		status = Status(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidStatus, v)
		}
		status = Status(int(v))
	case string:
		normalized := strings.ToLower(strings.TrimSpace(v))
		if known, ok := statusSynonyms[normalized]; ok {
			return known, nil
		}
		n, err := strconv.Atoi(normalized)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
		}
		status = Status(n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidStatus, raw)
	}

	if !status.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}
	return status, nil
}
