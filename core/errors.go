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

import "errors"

// Domain errors shared by every package.
var (
	// ErrShapeMismatch indicates parallel inputs have different lengths.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDimensionMismatch indicates two vectors have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidParameter indicates an argument is outside its allowed range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyEmbedding indicates an embedding has no components.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")

	// ErrNonFiniteEmbedding indicates an embedding contains NaN or Inf.
	ErrNonFiniteEmbedding = errors.New("embedding contains non-finite values")
)
