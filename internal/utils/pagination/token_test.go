package pagination_test

import (
	"testing"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	entryDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	pieceNumber := "2026-000042"

	token := pagination.EncodeToken(entryDate, pieceNumber)
	gotDate, gotPiece, err := pagination.DecodeToken(token)

	assert.NoError(t, err)
	assert.True(t, gotDate.Equal(entryDate))
	assert.Equal(t, pieceNumber, gotPiece)
}

func TestDecodeToken_Invalid(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)

	// Valid base64 but missing the separator.
	_, _, err = pagination.DecodeToken("bm9zZXBhcmF0b3I=")
	assert.Error(t, err)
}
