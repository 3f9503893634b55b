// Copyright 2025 Tempo ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the Tempo neural network modules:
// the building blocks (Linear, LayerNorm, Dropout, activations, multi-head
// attention) and the sequence-to-sequence Transformer composed from them.
package nn

import (
	"github.com/tempo-ml/tempo/internal/nn"
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Module is the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// LayerNorm applies layer normalization over the last dimension.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a new LayerNorm layer.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(normalizedShape, epsilon, backend)
}

// Dropout randomly zeroes inputs during training.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a new Dropout module with drop probability p.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	return nn.NewDropout[B](p)
}

// FeedForward is the position-wise feed-forward network of a transformer layer.
type FeedForward[B tensor.Backend] = nn.FeedForward[B]

// NewFeedForward creates a new position-wise feed-forward network.
func NewFeedForward[B tensor.Backend](dModel, dFF int, backend B) *FeedForward[B] {
	return nn.NewFeedForward(dModel, dFF, backend)
}

// Activations

// ReLU represents the rectified linear unit activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the sigmoid activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Attention

// MultiHeadAttention implements multi-head attention with independent query
// and value widths.
type MultiHeadAttention[B tensor.Backend] = nn.MultiHeadAttention[B]

// NewMultiHeadAttention creates a new multi-head attention module.
func NewMultiHeadAttention[B tensor.Backend](dModel, dimQ, dimV, numHeads int, backend B) *MultiHeadAttention[B] {
	return nn.NewMultiHeadAttention(dModel, dimQ, dimV, numHeads, backend)
}

// ScaledDotProductAttention computes softmax(QK^T/sqrt(d)) V.
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value, mask *tensor.Tensor[B],
	scale float32,
) (*tensor.Tensor[B], *tensor.Tensor[B]) {
	return nn.ScaledDotProductAttention(query, key, value, mask, scale)
}

// AttentionMode selects how attention is restricted to sub-ranges of the sequence.
type AttentionMode = nn.AttentionMode

// Attention restriction modes.
const (
	AttentionFull   = nn.AttentionFull
	AttentionChunk  = nn.AttentionChunk
	AttentionWindow = nn.AttentionWindow
)

// ParseAttentionMode resolves a configuration name to an AttentionMode.
func ParseAttentionMode(name string) (AttentionMode, error) {
	return nn.ParseAttentionMode(name)
}

// ChunkMask builds a block-diagonal additive attention mask.
func ChunkMask[B tensor.Backend](seqLen, chunkSize int, backend B) *tensor.Tensor[B] {
	return nn.ChunkMask(seqLen, chunkSize, backend)
}

// WindowMask builds a sliding-window additive attention mask.
func WindowMask[B tensor.Backend](seqLen, windowSize int, backend B) *tensor.Tensor[B] {
	return nn.WindowMask(seqLen, windowSize, backend)
}

// Positional encodings

// PositionalEncoding is a tagged enumeration of positional encoding variants.
type PositionalEncoding = nn.PositionalEncoding

// Positional encoding variants.
const (
	PENone     = nn.PENone
	PEOriginal = nn.PEOriginal
	PERegular  = nn.PERegular
)

// ParsePositionalEncoding resolves a configuration name to a variant.
func ParsePositionalEncoding(name string) (PositionalEncoding, error) {
	return nn.ParsePositionalEncoding(name)
}

// Transformer

// Config holds the immutable scalar configuration of a Transformer.
type Config = nn.Config

// NewConfig returns a Config for the given model geometry with defaults.
func NewConfig(dInput, dModel, dOutput, dimQ, dimV, numHeads, seqLen, numLayers int) Config {
	return nn.NewConfig(dInput, dModel, dOutput, dimQ, dimV, numHeads, seqLen, numLayers)
}

// Transformer is the sequence-to-sequence time-series transformer.
type Transformer[B tensor.Backend] = nn.Transformer[B]

// NewTransformer builds a Transformer from the configuration.
//
// Example:
//
//	backend := cpu.New()
//	cfg := nn.NewConfig(3, 8, 1, 4, 4, 2, 4, 2)
//	cfg.PE = "original"
//	model, err := nn.NewTransformer(cfg, backend)
func NewTransformer[B tensor.Backend](cfg Config, backend B) (*Transformer[B], error) {
	return nn.NewTransformer(cfg, backend)
}

// Encoder is one shape-preserving layer of the encoder stack.
type Encoder[B tensor.Backend] = nn.Encoder[B]

// Decoder is one layer of the decoder stack.
type Decoder[B tensor.Backend] = nn.Decoder[B]
