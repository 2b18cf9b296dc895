package covers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	g := NewPlaceholderGenerator()

	a, err := g.Generate(context.Background(), "Silver Age Comics", "comics")
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), "Silver Age Comics", "comics")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "data:image/png;base64,"))
}

func TestGenerate_DistinctNames(t *testing.T) {
	g := NewPlaceholderGenerator()

	a, err := g.Generate(context.Background(), "Coins", "")
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), "Stamps", "")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerate_EmptyName(t *testing.T) {
	g := NewPlaceholderGenerator()
	_, err := g.Generate(context.Background(), "   ", "")
	assert.Error(t, err)
}

func TestGenerate_CancelledContext(t *testing.T) {
	g := NewPlaceholderGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, "Vinyl", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Silver Age Comics", "SAC"},
		{"coins", "C"},
		{"1986 Topps Baseball Extra", "1TB"},
		{"  ", "?"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, initials(tt.name), tt.name)
	}
}
