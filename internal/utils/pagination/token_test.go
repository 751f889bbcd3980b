package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkit/gl_ledger_app/internal/utils/pagination"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 17, 9, 30, 12, 345678000, time.UTC)
	token := pagination.EncodeToken(createdAt, "entry-123")

	gotTime, gotID, err := pagination.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, "entry-123", gotID)
}

func TestDecodeTokenInvalid(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)

	_, _, err = pagination.DecodeToken("") // empty decodes to empty string, no separator
	assert.Error(t, err)

	// Valid base64 but no separator.
	_, _, err = pagination.DecodeToken("aGVsbG8=")
	assert.Error(t, err)
}
