package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lojinha/backoffice/internal/errors"
)

func Test_PageQuery_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		query       PageQuery
		expectError error
	}{
		{
			name:  "Success - first page",
			query: PageQuery{Page: 1, Limit: 10},
		},
		{
			name:  "Success - limit at the bound",
			query: PageQuery{Page: 3, Limit: MaxPageSize},
		},
		{
			name:        "Error - zero page",
			query:       PageQuery{Page: 0, Limit: 10},
			expectError: apperrors.ErrInvalidPagination,
		},
		{
			name:        "Error - negative page",
			query:       PageQuery{Page: -2, Limit: 10},
			expectError: apperrors.ErrInvalidPagination,
		},
		{
			name:        "Error - zero limit",
			query:       PageQuery{Page: 1, Limit: 0},
			expectError: apperrors.ErrInvalidPagination,
		},
		{
			name:        "Error - limit above the bound",
			query:       PageQuery{Page: 1, Limit: MaxPageSize + 1},
			expectError: apperrors.ErrInvalidPagination,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query.Validate()
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_PageQuery_Offset(t *testing.T) {
	testCases := []struct {
		name     string
		query    PageQuery
		expected int64
	}{
		{name: "first page skips nothing", query: PageQuery{Page: 1, Limit: 10}, expected: 0},
		{name: "second page skips one window", query: PageQuery{Page: 2, Limit: 10}, expected: 10},
		{name: "window size scales the skip", query: PageQuery{Page: 4, Limit: 25}, expected: 75},
		{name: "deep pages do not wrap negative", query: PageQuery{Page: 30_000_000, Limit: MaxPageSize}, expected: 2_999_999_900},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.query.Offset())
		})
	}
}

func Test_parseUUIDs(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()

	t.Run("Success - order preserved", func(t *testing.T) {
		parsed, err := parseUUIDs([]string{idA.String(), idB.String(), idA.String()})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{idA, idB, idA}, parsed)
	})

	t.Run("Success - empty input", func(t *testing.T) {
		parsed, err := parseUUIDs(nil)
		require.NoError(t, err)
		assert.Empty(t, parsed)
	})

	t.Run("Error - malformed id", func(t *testing.T) {
		parsed, err := parseUUIDs([]string{idA.String(), "not-a-uuid"})
		assert.Error(t, err)
		assert.Nil(t, parsed)
	})
}
