package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAlpha(t *testing.T) {
	tests := []struct {
		name    string
		alpha   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"default", 0.75, false},
		{"negative", -0.1, true},
		{"above one", 1.01, true},
		{"NaN", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlpha(tt.alpha)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTopK(t *testing.T) {
	assert.NoError(t, ValidateTopK(0))
	assert.NoError(t, ValidateTopK(5))
	assert.ErrorIs(t, ValidateTopK(-1), ErrInvalidParameter)
}

func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name      string
		embedding []float32
		dim       int
		wantErr   error
	}{
		{"valid free dimension", []float32{1, 0}, 0, nil},
		{"valid fixed dimension", []float32{1, 0, 0}, 3, nil},
		{"empty", []float32{}, 0, ErrEmptyEmbedding},
		{"wrong dimension", []float32{1, 0}, 3, ErrDimensionMismatch},
		{"NaN component", []float32{1, float32(math.NaN())}, 0, ErrNonFiniteEmbedding},
		{"Inf component", []float32{float32(math.Inf(1))}, 0, ErrNonFiniteEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedding(tt.embedding, tt.dim)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestValidateBatch(t *testing.T) {
	t.Run("shape mismatch", func(t *testing.T) {
		_, err := ValidateBatch([]string{"a", "b"}, [][]float32{{1}}, 0)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("first embedding fixes dimension", func(t *testing.T) {
		dim, err := ValidateBatch([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, dim)
	})

	t.Run("mixed dimensions rejected", func(t *testing.T) {
		_, err := ValidateBatch([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1, 0}}, 0)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("store dimension enforced", func(t *testing.T) {
		_, err := ValidateBatch([]string{"a"}, [][]float32{{1, 0}}, 3)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("empty batch", func(t *testing.T) {
		dim, err := ValidateBatch(nil, nil, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, dim)
	})
}
