package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/cache"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
)

const adminsCacheKey = "admins"

type adminRepository interface {
	AddAdmin(ctx context.Context, admin domain.Admin) error
	DeleteAdmin(ctx context.Context, email string) error
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
}

type ListAdmins func(ctx context.Context) ([]domain.Admin, error)

// BuildListAdminsWithCache lists the stored admins together with the configured ones.
//
// Configured admins are not stored and cannot be removed.
func BuildListAdminsWithCache(
	adminCache cache.Cache[[]domain.Admin],
	repository adminRepository,
	configuredEmails []string,
	timeout time.Duration,
) ListAdmins {
	return func(ctx context.Context) ([]domain.Admin, error) {
		stored, err := cache.GetOrCreate(ctx, adminCache, adminsCacheKey, func() ([]domain.Admin, error) {
			return withTimeout(ctx, timeout, repository.ListAdmins)
		})
		if err != nil {
			// NOTE: The admin repository handles its own error reporting
			return nil, fmt.Errorf("failed to list admins: %w", err)
		}

		admins := slices.Clone(stored)
		for _, email := range configuredEmails {
			if slices.ContainsFunc(admins, func(admin domain.Admin) bool { return admin.Email == email }) {
				continue
			}
			admins = append(admins, domain.Admin{Email: email})
		}
		slices.SortFunc(admins, func(a, b domain.Admin) int {
			return strings.Compare(a.Email, b.Email)
		})

		return admins, nil
	}
}

type IsAdmin func(ctx context.Context, email string) (bool, error)

func BuildIsAdmin(listAdmins ListAdmins) IsAdmin {
	return func(ctx context.Context, rawEmail string) (bool, error) {
		email, err := domain.NormalizeEmail(rawEmail)
		if err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Rejecting invalid admin email", "error", err.Error())
			return false, nil
		}

		admins, err := listAdmins(ctx)
		if err != nil {
			return false, err
		}

		return slices.ContainsFunc(admins, func(admin domain.Admin) bool {
			return admin.Email == email
		}), nil
	}
}

type AddAdmin func(ctx context.Context, email, name string) (domain.Admin, error)

func BuildAddAdmin(
	repository adminRepository,
	adminCache cache.Cache[[]domain.Admin],
	nowFunc func() time.Time,
	timeout time.Duration,
) AddAdmin {
	return func(ctx context.Context, rawEmail, name string) (domain.Admin, error) {
		email, err := domain.NormalizeEmail(rawEmail)
		if err != nil {
			return domain.Admin{}, err
		}

		admin := domain.Admin{
			Email:   email,
			Name:    strings.TrimSpace(name),
			AddedAt: nowFunc(),
		}

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.AddAdmin(ctx, admin)
		})
		if err != nil {
			// NOTE: The admin repository handles its own error reporting
			return domain.Admin{}, fmt.Errorf("failed to add admin: %w", err)
		}

		cache.Invalidate(adminCache, adminsCacheKey)

		return admin, nil
	}
}

type RemoveAdmin func(ctx context.Context, email string) error

func BuildRemoveAdmin(
	repository adminRepository,
	adminCache cache.Cache[[]domain.Admin],
	timeout time.Duration,
) RemoveAdmin {
	return func(ctx context.Context, email string) error {
		err := withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.DeleteAdmin(ctx, email)
		})
		if err != nil {
			// NOTE: The admin repository handles its own error reporting
			return fmt.Errorf("failed to remove admin: %w", err)
		}

		cache.Invalidate(adminCache, adminsCacheKey)

		return nil
	}
}
