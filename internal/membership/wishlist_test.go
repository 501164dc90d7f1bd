package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulation/internal/errs"
)

func TestParseWishlist(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{name: "single", input: "7", want: []uint{7}},
		{name: "keeps order", input: "3,1,2", want: []uint{3, 1, 2}},
		{name: "ignores whitespace", input: " 3 , 1,2 ", want: []uint{3, 1, 2}},
		{name: "non numeric", input: "1,abc", wantErr: true},
		{name: "empty item", input: "1,,2", want: []uint{1, 2}},
		{name: "trailing comma", input: "3,", want: []uint{3}},
		{name: "only commas", input: ",,", want: []uint{}},
		{name: "negative", input: "-4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWishlist(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatWishlist(t *testing.T) {
	assert.Equal(t, "", FormatWishlist(nil))
	assert.Equal(t, "3,1,2", FormatWishlist([]uint{3, 1, 2}))

	ids, err := ParseWishlist(FormatWishlist([]uint{10, 20}))
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 20}, ids)
}

func TestWishlistAddRemove(t *testing.T) {
	ids, changed := wishlistAdd(nil, 4)
	assert.True(t, changed)
	assert.Equal(t, []uint{4}, ids)

	ids, changed = wishlistAdd(ids, 4)
	assert.False(t, changed)
	assert.Equal(t, []uint{4}, ids)

	ids, _ = wishlistAdd(ids, 9)
	ids, changed = wishlistRemove(ids, 4)
	assert.True(t, changed)
	assert.Equal(t, []uint{9}, ids)

	_, changed = wishlistRemove(ids, 4)
	assert.False(t, changed)
}
