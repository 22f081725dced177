package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"abc1", ErrPasswordTooShort},
		{"abcdef", ErrPasswordTooWeak},
		{"123456", ErrPasswordTooWeak},
		{"abc123", nil},
		{"Abcdef", nil},
		{"héllo!", nil},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("abc123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("abc123", hash))
	assert.False(t, CheckPassword("abc124", hash))
}

func TestHashToken_Stable(t *testing.T) {
	assert.Equal(t, HashToken("x"), HashToken("x"))
	assert.NotEqual(t, HashToken("x"), HashToken("y"))
	assert.Len(t, HashToken("x"), 64)
}
