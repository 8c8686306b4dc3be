package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pivolan/chart_builder/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGet(t *testing.T) {
	r, err := NewRegistry(2)
	require.NoError(t, err)

	s, err := r.Create(monthSales())
	require.NoError(t, err)
	assert.Len(t, s.ID(), 36)

	got, ok := r.Get(s.ID())
	assert.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryEvictsOldest(t *testing.T) {
	r, err := NewRegistry(2)
	require.NoError(t, err)

	first, _ := r.Create(monthSales())
	second, _ := r.Create(monthSales())
	_, ok := r.Get(first.ID())
	require.True(t, ok)
	third, _ := r.Create(monthSales())

	assert.Equal(t, 2, r.Len())
	_, ok = r.Get(second.ID())
	assert.False(t, ok)
	_, ok = r.Get(third.ID())
	assert.True(t, ok)
}

func TestRegistryEmptyDataset(t *testing.T) {
	r, err := NewRegistry(4)
	require.NoError(t, err)

	s, err := r.CreateWithID("fixed", nil)
	assert.True(t, errors.Is(err, models.ErrEmptyDataset))
	_, ok := r.Get("fixed")
	assert.True(t, ok)
	assert.Equal(t, "fixed", s.ID())

	r.Remove("fixed")
	assert.Zero(t, r.Len())
}

func TestNewRegistryInvalidSize(t *testing.T) {
	_, err := NewRegistry(0)
	assert.Error(t, err)
}

func TestRegistryCreateWithIDReloads(t *testing.T) {
	r, err := NewRegistry(4)
	require.NoError(t, err)

	s, err := r.CreateWithID("upload", monthSales())
	require.NoError(t, err)
	ch, cancel := s.Subscribe(1)
	defer cancel()

	cities := []models.Record{
		{{Name: "city", Value: models.Str("Paris")}, {Name: "v", Value: models.Num(3)}},
	}
	reloaded, err := r.CreateWithID("upload", cities)
	require.NoError(t, err)
	assert.Same(t, s, reloaded)
	assert.Equal(t, 1, r.Len())

	select {
	case snap := <-ch:
		assert.Equal(t, []models.Field{
			{Name: "city", Kind: models.KindDimension},
			{Name: "v", Kind: models.KindMeasure},
		}, snap.Fields)
		assert.Equal(t, []string{"Paris"}, snap.Descriptor.Categories)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not get the reloaded dataset")
	}

	_, err = r.CreateWithID("upload", nil)
	assert.True(t, errors.Is(err, models.ErrEmptyDataset))
	got, ok := r.Get("upload")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Empty(t, got.Snapshot().Fields)
}
