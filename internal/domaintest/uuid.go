package domaintest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func NewID(t *testing.T) string {
	t.Helper()

	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id.String()
}

// IDSequence returns a generator of ids with the given prefix
func IDSequence(prefix string) func() string {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}
