package sessionrepository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Repository struct {
	store documentstore.Store

	tracer trace.Tracer
}

func New(store documentstore.Store) *Repository {
	tracer := otel.Tracer("gamenight/sessionrepository")

	return &Repository{
		store: store,

		tracer: tracer,
	}
}

func collectionFor(kind domain.SessionKind) (string, error) {
	switch kind {
	case domain.SessionKindGameDay:
		return "game_days", nil
	case domain.SessionKindTournament:
		return "tournaments", nil
	default:
		return "", fmt.Errorf("%w: unknown session kind %q", domain.ErrSessionNotFound, kind)
	}
}

func (r *Repository) startSpan(ctx context.Context, name string, kind domain.SessionKind, id string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("session.kind", string(kind)),
		attribute.String("session.id", id),
	))
}

// CreateSession stores a new session, failing with domain.ErrSessionExists if the id is taken
func (r *Repository) CreateSession(ctx context.Context, session domain.Session) error {
	ctx, span := r.startSpan(ctx, "Repository.CreateSession", session.Kind, session.ID)
	defer span.End()

	collection, err := collectionFor(session.Kind)
	if err != nil {
		return err
	}

	err = r.store.Create(ctx, collection, session.ID, toStoredSession(session))
	if errors.Is(err, documentstore.ErrAlreadyExists) {
		return fmt.Errorf("%w: %s", domain.ErrSessionExists, session.ID)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error) {
	ctx, span := r.startSpan(ctx, "Repository.GetSession", kind, id)
	defer span.End()

	collection, err := collectionFor(kind)
	if err != nil {
		return domain.Session{}, err
	}

	var stored storedSession
	err = r.store.Get(ctx, collection, id, &stored)
	if errors.Is(err, documentstore.ErrNotFound) {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return domain.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return fromStoredSession(kind, id, stored), nil
}

// SaveSession overwrites the stored session
func (r *Repository) SaveSession(ctx context.Context, session domain.Session) error {
	ctx, span := r.startSpan(ctx, "Repository.SaveSession", session.Kind, session.ID)
	defer span.End()

	collection, err := collectionFor(session.Kind)
	if err != nil {
		return err
	}

	err = r.store.Put(ctx, collection, session.ID, toStoredSession(session))
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, kind domain.SessionKind, id string) error {
	ctx, span := r.startSpan(ctx, "Repository.DeleteSession", kind, id)
	defer span.End()

	collection, err := collectionFor(kind)
	if err != nil {
		return err
	}

	err = r.store.Delete(ctx, collection, id)
	if errors.Is(err, documentstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns all sessions of the kind, most recent date first
func (r *Repository) ListSessions(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error) {
	ctx, span := r.startSpan(ctx, "Repository.ListSessions", kind, "")
	defer span.End()

	collection, err := collectionFor(kind)
	if err != nil {
		return nil, err
	}

	documents, err := r.store.List(ctx, collection)
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]domain.Session, 0, len(documents))
	for _, document := range documents {
		var stored storedSession
		if err := document.Decode(&stored); err != nil {
			logging.FromContext(ctx).WarnContext(
				ctx, "Skipping undecodable session",
				"kind", string(kind), "sessionID", document.ID, "error", err.Error(),
			)
			continue
		}
		sessions = append(sessions, fromStoredSession(kind, document.ID, stored))
	}

	slices.SortFunc(sessions, func(a, b domain.Session) int {
		if c := strings.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return sessions, nil
}
