package adminrepository_test

import (
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/adminrepository"
	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	t.Parallel()

	addedAt := time.Date(2025, time.February, 2, 12, 0, 0, 0, time.UTC)

	t.Run("emails are normalized", func(t *testing.T) {
		t.Parallel()

		repo := adminrepository.New(documentstore.NewInMemory())
		err := repo.AddAdmin(t.Context(), domain.Admin{Email: " Coach@Example.com ", Name: "Coach", AddedAt: addedAt})
		require.NoError(t, err)

		admin, err := repo.GetAdmin(t.Context(), "COACH@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.Admin{Email: "coach@example.com", Name: "Coach", AddedAt: addedAt}, admin)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()

		repo := adminrepository.New(documentstore.NewInMemory())
		err := repo.AddAdmin(t.Context(), domain.Admin{Email: "not an email"})
		require.ErrorIs(t, err, domain.ErrInvalidEmail)

		_, err = repo.GetAdmin(t.Context(), "")
		require.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("missing admin", func(t *testing.T) {
		t.Parallel()

		repo := adminrepository.New(documentstore.NewInMemory())
		_, err := repo.GetAdmin(t.Context(), "someone@example.com")
		require.ErrorIs(t, err, domain.ErrAdminNotFound)
		require.ErrorIs(t, repo.DeleteAdmin(t.Context(), "someone@example.com"), domain.ErrAdminNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		t.Parallel()

		repo := adminrepository.New(documentstore.NewInMemory())
		for _, email := range []string{"zed@example.com", "amy@example.com"} {
			require.NoError(t, repo.AddAdmin(t.Context(), domain.Admin{Email: email, AddedAt: addedAt}))
		}

		admins, err := repo.ListAdmins(t.Context())
		require.NoError(t, err)
		require.Len(t, admins, 2)
		require.Equal(t, "amy@example.com", admins[0].Email)
		require.Equal(t, "zed@example.com", admins[1].Email)

		require.NoError(t, repo.DeleteAdmin(t.Context(), "Amy@Example.com"))
		admins, err = repo.ListAdmins(t.Context())
		require.NoError(t, err)
		require.Len(t, admins, 1)
	})
}
