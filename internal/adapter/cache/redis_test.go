package cache

import (
	"context"
	"testing"
	"time"

	"canasta/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAdapter_RoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewRedisAdapter(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer a.Close()

	_, ok, err := a.Get(ctx, "arroz")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Put(ctx, "ARROZ ", []model.Quotation{quote(t, "lider", 1290), quote(t, "jumbo", 1390)}, 0))
	assert.True(t, mr.Exists("quotes:arroz"))

	got, ok, err := a.Get(ctx, "arroz")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "lider", got[0].Source)
	assert.Equal(t, 1390.0, got[1].UnitPrice)

	mr.FastForward(2 * time.Minute)
	_, ok, err = a.Get(ctx, "arroz")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAdapter_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("quotes:pan", "{not json"))

	a, err := NewRedisAdapter(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer a.Close()

	_, ok, err := a.Get(context.Background(), "pan")
	assert.Error(t, err)
	assert.False(t, ok)
}
