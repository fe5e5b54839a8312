package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedReset(t *testing.T) {
	store := newMemStore()
	tm := &memTransactionManager{store: store}
	_, err := NewCatalog(store).CreateAnimal(context.Background(), validAnimal())
	require.NoError(t, err)

	raised := decimal.NewFromInt(2500)
	seed := []NewAnimal{validAnimal(), validAnimal()}
	seed[1].Name = "Luna"
	seed[1].RaisedAmount = &raised

	n, err := NewSeeder(tm, store).Seed(context.Background(), seed, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	animals, err := store.GetAllAnimals(context.Background())
	require.NoError(t, err)
	require.Len(t, animals, 2)
	assert.Equal(t, "Luna", animals[0].Name)
	assert.True(t, animals[0].BaselineAmount.Equal(raised))
}

func TestSeedInvalidAnimalWritesNothing(t *testing.T) {
	store := newMemStore()
	tm := &memTransactionManager{store: store}

	seed := []NewAnimal{validAnimal(), {Name: "broken"}}
	_, err := NewSeeder(tm, store).Seed(context.Background(), seed, false)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.animals)
}

func TestSeedRollsBackOnStoreError(t *testing.T) {
	store := newMemStore()
	tm := &memTransactionManager{store: store}
	_, err := NewCatalog(store).CreateAnimal(context.Background(), validAnimal())
	require.NoError(t, err)
	store.failOn["InsertAnimal"] = errBoom

	_, err = NewSeeder(tm, store).Seed(context.Background(), []NewAnimal{validAnimal()}, true)
	require.ErrorIs(t, err, ErrStore)
	assert.Len(t, store.animals, 1)
}
