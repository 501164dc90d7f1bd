package membership

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/circulation/internal/errs"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "valid password", password: "s3cret", wantErr: nil},
		{name: "empty password", password: "", wantErr: errs.ErrValidation},
		{name: "password at maximum length", password: strings.Repeat("a", 72), wantErr: nil},
		{name: "password too long", password: strings.Repeat("a", 73), wantErr: errs.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, bcrypt.MinCost)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("correct horse", hash))
	assert.ErrorIs(t, CheckPassword("wrong horse", hash), errs.ErrAuth)
}
