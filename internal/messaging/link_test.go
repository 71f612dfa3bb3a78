package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutuelle-membership/internal/domain"
)

func TestLinkBuilder_Normalize(t *testing.T) {
	b := NewLinkBuilder("223", 8, 8)

	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"Local", "76 12 34 56", "22376123456"},
		{"Plus", "+223 76-12-34-56", "22376123456"},
		{"DoubleZero", "0022376123456", "22376123456"},
		{"CountryCodeNoPlus", "22376123456", "22376123456"},
		{"Dots", "76.12.34.56", "22376123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Normalize(tt.phone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []string{"", "abc", "7612345", "761234567", "+33 6 12 34 56 78"}
	for _, phone := range invalid {
		_, err := b.Normalize(phone)
		assert.ErrorIs(t, err, domain.ErrInvalidPhone, phone)
	}
}

func TestLinkBuilder_Build(t *testing.T) {
	b := NewLinkBuilder("+223", 8, 8)

	link, err := b.Build("76123456", "Code: 12-34-56 & merci")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/22376123456?text=Code%3A%2012-34-56%20%26%20merci", link)

	link, err = b.Build("76123456", "")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/22376123456", link)

	_, err = b.Build("12", "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}
