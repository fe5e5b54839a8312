package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultSeedFile(t *testing.T) {
	animals, err := parseSeedFile(defaultSeedFile)
	require.NoError(t, err)
	require.Len(t, animals, 6)

	bella := animals[0]
	assert.Equal(t, "Bella", bella.Name)
	assert.Equal(t, "high", bella.UrgencyLevel)
	require.NotNil(t, bella.MedicalNeeds)
	assert.Equal(t, "Leg surgery, pain medication, physiotherapy", *bella.MedicalNeeds)
	require.NotNil(t, bella.TargetAmount)
	assert.True(t, bella.TargetAmount.Equal(decimal.NewFromInt(25000)))
	require.NotNil(t, bella.RaisedAmount)
	assert.True(t, bella.RaisedAmount.Equal(decimal.NewFromInt(8500)))

	for _, a := range animals {
		assert.NotEmpty(t, a.Description, a.Name)
		assert.Contains(t, a.Image, "https://", a.Name)
	}
}

func TestParseSeedFileOptionalAmounts(t *testing.T) {
	animals, err := parseSeedFile([]byte(`
animals:
  - name: Pip
    description: Tiny parrot
    image: https://example.com/pip.jpg
`))
	require.NoError(t, err)
	require.Len(t, animals, 1)
	assert.Nil(t, animals[0].TargetAmount)
	assert.Nil(t, animals[0].RaisedAmount)
	assert.Nil(t, animals[0].MedicalNeeds)
}

func TestParseSeedFileInvalidAmount(t *testing.T) {
	_, err := parseSeedFile([]byte(`
animals:
  - name: Pip
    targetAmount: lots
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targetAmount")
}
