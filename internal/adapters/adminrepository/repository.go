package adminrepository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const collection = "admins"

type Repository struct {
	store documentstore.Store

	tracer trace.Tracer
}

func New(store documentstore.Store) *Repository {
	tracer := otel.Tracer("gamenight/adminrepository")

	return &Repository{
		store: store,

		tracer: tracer,
	}
}

type storedAdmin struct {
	Name    string    `json:"name" bson:"name"`
	AddedAt time.Time `json:"addedAt" bson:"addedAt"`
}

// AddAdmin stores the admin under its normalized email, replacing any existing entry
func (r *Repository) AddAdmin(ctx context.Context, admin domain.Admin) error {
	ctx, span := r.tracer.Start(ctx, "Repository.AddAdmin")
	defer span.End()

	email, err := domain.NormalizeEmail(admin.Email)
	if err != nil {
		return err
	}

	err = r.store.Put(ctx, collection, email, storedAdmin{Name: admin.Name, AddedAt: admin.AddedAt})
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

func (r *Repository) GetAdmin(ctx context.Context, email string) (domain.Admin, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.GetAdmin")
	defer span.End()

	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.Admin{}, err
	}

	var stored storedAdmin
	err = r.store.Get(ctx, collection, normalized, &stored)
	if errors.Is(err, documentstore.ErrNotFound) {
		return domain.Admin{}, fmt.Errorf("%w: %s", domain.ErrAdminNotFound, normalized)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return domain.Admin{}, fmt.Errorf("failed to get admin: %w", err)
	}

	return domain.Admin{Email: normalized, Name: stored.Name, AddedAt: stored.AddedAt}, nil
}

func (r *Repository) DeleteAdmin(ctx context.Context, email string) error {
	ctx, span := r.tracer.Start(ctx, "Repository.DeleteAdmin")
	defer span.End()

	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return err
	}

	err = r.store.Delete(ctx, collection, normalized)
	if errors.Is(err, documentstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrAdminNotFound, normalized)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}

func (r *Repository) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.ListAdmins")
	defer span.End()

	documents, err := r.store.List(ctx, collection)
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	admins := make([]domain.Admin, 0, len(documents))
	for _, document := range documents {
		var stored storedAdmin
		if err := document.Decode(&stored); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping undecodable admin", "email", document.ID, "error", err.Error())
			continue
		}
		admins = append(admins, domain.Admin{Email: document.ID, Name: stored.Name, AddedAt: stored.AddedAt})
	}

	slices.SortFunc(admins, func(a, b domain.Admin) int {
		return strings.Compare(a.Email, b.Email)
	})

	return admins, nil
}
