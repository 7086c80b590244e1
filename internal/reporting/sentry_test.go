package reporting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	t.Run("connection reset by peer", func(t *testing.T) {
		t.Parallel()

		err := `failed to select document: read tcp [dead:beef:feb1:d745::c001]:64079->[dead:beef::6811:112a]:5432: read: connection reset by peer`
		want := `failed to select document: read tcp <host>-><host>: read: connection reset by peer`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("misc ipv6", func(t *testing.T) {
		t.Parallel()

		ips := []string{
			`1:2:3:4:5:6:7:8`,
			`1::`,
			`1:2:3:4:5:6:7::`,
			`1::8`,
			`1:2:3:4:5:6::8`,
			`1::7:8`,
			`1:2:3:4:5::7:8`,
			`1::6:7:8`,
			`1:2:3:4::6:7:8`,
			`1::5:6:7:8`,
			`1:2:3::5:6:7:8`,
			`1::4:5:6:7:8`,
			`1:2::4:5:6:7:8`,
			`1::3:4:5:6:7:8`,
			`::2:3:4:5:6:7:8`,
			`::8`,
			`::`,
		}
		for _, ip := range ips {
			t.Run(ip, func(t *testing.T) {
				t.Parallel()

				require.Equal(t, "<host>", sanitizeError(fmt.Sprintf("[%s]:1234", ip)))
			})
		}
	})

	t.Run("ids", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			error string
			want  string
		}{
			{
				error: `failed to add career stats for 0b5e3a3c-6a2b-4f8e-9d44-cfc238c64f71: context deadline exceeded`,
				want:  `failed to add career stats for <uuid>: context deadline exceeded`,
			},
			{
				error: `failed to save session: game day 2025-03-04: connection refused`,
				want:  `failed to save session: game day <date>: connection refused`,
			},
			{
				error: `failed to get admin: Coach.Name+league@example.co.uk: timeout`,
				want:  `failed to get admin: <email>: timeout`,
			},
			{
				// No ids
				error: `failed to list players: context canceled`,
				want:  `failed to list players: context canceled`,
			},
			{
				// Not a date
				error: `failed to get session: cup-12025-03-041`,
				want:  `failed to get session: cup-12025-03-041`,
			},
		}
		for _, tc := range cases {
			t.Run(tc.error, func(t *testing.T) {
				t.Parallel()

				require.Equal(t, tc.want, sanitizeError(tc.error))
			})
		}
	})
}
