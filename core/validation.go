// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
)

// ValidateAlpha checks the fusion weight is a number in [0, 1].
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalidParameter, alpha)
	}
	return nil
}

// ValidateTopK checks the result limit is not negative.
// Zero is valid and selects nothing.
func ValidateTopK(topK int) error {
	if topK < 0 {
		return fmt.Errorf("%w: topK %d is negative", ErrInvalidParameter, topK)
	}
	return nil
}

// ValidateEmbedding validates a single embedding according to domain rules.
//
// Validation rules:
//   - must contain at least one component
//   - every component must be finite
//   - when dim > 0, length must equal dim
func ValidateEmbedding(embedding []float32, dim int) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, ErrEmptyEmbedding)
	}
	if dim > 0 && len(embedding) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), dim)
	}
	for i, v := range embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %w at index %d", ErrInvalidParameter, ErrNonFiniteEmbedding, i)
		}
	}
	return nil
}

// ValidateBatch validates a batch of texts and embeddings destined for one store.
// dim is the store dimension, or 0 when the store has not fixed one yet, in
// which case the first embedding sets it for the rest of the batch.
// It returns the dimension the batch agrees on.
func ValidateBatch(texts []string, embeddings [][]float32, dim int) (int, error) {
	if len(texts) != len(embeddings) {
		return dim, fmt.Errorf("%w: %d texts, %d embeddings", ErrShapeMismatch, len(texts), len(embeddings))
	}
	for i, emb := range embeddings {
		if err := ValidateEmbedding(emb, dim); err != nil {
			return dim, fmt.Errorf("embedding %d: %w", i, err)
		}
		if dim == 0 {
			dim = len(emb)
		}
	}
	return dim, nil
}
