package nn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Default configuration values, matching the reference model.
const (
	// DefaultDropout is the drop probability after each attention or
	// feed-forward block.
	DefaultDropout = 0.3
	// DefaultFFNDim is the hidden width of the position-wise feed-forward
	// blocks.
	DefaultFFNDim = 2048
	// DefaultChunkSize is the chunk extent for chunked attention, in
	// timesteps (one week of hourly data).
	DefaultChunkSize = 168
	// DefaultWindowSize is the half-width of the sliding attention window,
	// in timesteps.
	DefaultWindowSize = 168
)

// Config holds the immutable scalar configuration of a Transformer, fixed at
// construction.
type Config struct {
	DInput    int // raw per-timestep feature width
	DModel    int // internal model width shared by all stack layers
	DOutput   int // output feature width
	DimQ      int // per-head query/key width
	DimV      int // per-head value width
	NumHeads  int // attention heads per layer
	SeqLen    int // time length k of every window
	NumLayers int // stack depth N (encoder and decoder each)

	Dropout float32 // drop probability after each MHA or FFN block
	FFNDim  int     // feed-forward hidden width

	ChunkMode  string // attention restriction: "chunk", "window", "full"/"none"
	ChunkSize  int    // chunk extent for "chunk" mode
	WindowSize int    // window half-width for "window" mode

	PE string // positional encoding: "original", "regular", "none"
}

// NewConfig returns a Config for the given model geometry with the default
// dropout (0.3), feed-forward width, chunked attention and no positional
// encoding. Fields may be overridden before construction.
func NewConfig(dInput, dModel, dOutput, dimQ, dimV, numHeads, seqLen, numLayers int) Config {
	return Config{
		DInput:     dInput,
		DModel:     dModel,
		DOutput:    dOutput,
		DimQ:       dimQ,
		DimV:       dimV,
		NumHeads:   numHeads,
		SeqLen:     seqLen,
		NumLayers:  numLayers,
		Dropout:    DefaultDropout,
		FFNDim:     DefaultFFNDim,
		ChunkMode:  "chunk",
		ChunkSize:  DefaultChunkSize,
		WindowSize: DefaultWindowSize,
		PE:         "none",
	}
}

// validate checks the scalar fields that must be positive.
func (c Config) validate() error {
	named := []struct {
		name  string
		value int
	}{
		{"d_input", c.DInput},
		{"d_model", c.DModel},
		{"d_output", c.DOutput},
		{"q", c.DimQ},
		{"v", c.DimV},
		{"h", c.NumHeads},
		{"k", c.SeqLen},
	}
	for _, f := range named {
		if f.value <= 0 {
			return fmt.Errorf("transformer: %s must be positive, got %d", f.name, f.value)
		}
	}
	if c.NumLayers < 0 {
		return fmt.Errorf("transformer: N must be non-negative, got %d", c.NumLayers)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("transformer: dropout must be in [0, 1), got %f", c.Dropout)
	}
	return nil
}

// Transformer is a sequence-to-sequence transformer for multivariate time
// series, after "Attention is All You Need" adapted for sequential data: the
// token embedding is replaced with a fully connected layer and the output
// softmax with a sigmoid.
//
// Composition: input embedding → (+ positional encoding) → encoder stack →
// (+ positional encoding again) → decoder stack over the fixed encoder
// memory → output projection → sigmoid.
//
// The forward pass is a pure function of the input and the parameters; the
// model may serve concurrent Forward calls as long as no caller mutates
// parameters concurrently. Construction is in evaluation mode (dropout
// disabled); an external training procedure switches with Train.
type Transformer[B tensor.Backend] struct {
	LayersEncoding []*Encoder[B]
	LayersDecoding []*Decoder[B]

	embedding *Linear[B] // [d_input → d_model]
	output    *Linear[B] // [d_model → d_output]
	sigmoid   *Sigmoid[B]

	// peTable is the fixed positional encoding table [k, d_model], nil when
	// positional encoding is disabled. Non-trainable: never reported by
	// Parameters.
	peTable *tensor.Tensor[B]

	config  Config
	backend B
}

// NewTransformer builds a Transformer from the configuration.
//
// It constructs N independent encoder layers and N independent decoder
// layers (no parameter sharing), the embedding and output projections, and —
// if requested — the fixed positional encoding table of shape [k, d_model].
//
// An unrecognized positional encoding or chunk mode name is a configuration
// error; there is no silent fallback.
func NewTransformer[B tensor.Backend](cfg Config, backend B) (*Transformer[B], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pe, err := ParsePositionalEncoding(cfg.PE)
	if err != nil {
		return nil, fmt.Errorf("transformer: %w", err)
	}

	mode, err := ParseAttentionMode(cfg.ChunkMode)
	if err != nil {
		return nil, fmt.Errorf("transformer: %w", err)
	}

	if cfg.FFNDim <= 0 {
		cfg.FFNDim = DefaultFFNDim
	}

	mask, err := attentionMask(mode, cfg, backend)
	if err != nil {
		return nil, err
	}

	t := &Transformer[B]{
		LayersEncoding: make([]*Encoder[B], cfg.NumLayers),
		LayersDecoding: make([]*Decoder[B], cfg.NumLayers),
		embedding:      NewLinear(cfg.DInput, cfg.DModel, backend),
		output:         NewLinear(cfg.DModel, cfg.DOutput, backend),
		sigmoid:        NewSigmoid[B](),
		config:         cfg,
		backend:        backend,
	}

	for i := range t.LayersEncoding {
		t.LayersEncoding[i] = NewEncoder(
			cfg.DModel, cfg.DimQ, cfg.DimV, cfg.NumHeads, cfg.FFNDim, cfg.Dropout, mask, backend)
	}
	for i := range t.LayersDecoding {
		t.LayersDecoding[i] = NewDecoder(
			cfg.DModel, cfg.DimQ, cfg.DimV, cfg.NumHeads, cfg.FFNDim, cfg.Dropout, mask, backend)
	}

	if raw := pe.Table(cfg.SeqLen, cfg.DModel); raw != nil {
		t.peTable = tensor.New(raw, backend)
	}

	return t, nil
}

// attentionMask builds the shared additive attention mask for the configured
// mode, or nil for unrestricted attention.
func attentionMask[B tensor.Backend](mode AttentionMode, cfg Config, backend B) (*tensor.Tensor[B], error) {
	switch mode {
	case AttentionFull:
		return nil, nil
	case AttentionChunk:
		size := cfg.ChunkSize
		if size <= 0 {
			size = DefaultChunkSize
		}
		if size >= cfg.SeqLen {
			// A chunk covering the whole window restricts nothing.
			return nil, nil
		}
		return ChunkMask(cfg.SeqLen, size, backend), nil
	case AttentionWindow:
		size := cfg.WindowSize
		if size <= 0 {
			size = DefaultWindowSize
		}
		if size >= cfg.SeqLen-1 {
			return nil, nil
		}
		return WindowMask(cfg.SeqLen, size, backend), nil
	default:
		return nil, fmt.Errorf("transformer: unknown attention mode %d", int(mode))
	}
}

// Forward propagates a batch of input sequences through the transformer.
//
// Input shape: [batch, k, d_input]. Output shape: [batch, k, d_output], with
// every element strictly inside (0, 1).
//
// Algorithm:
//  1. Embed every timestep's feature vector to d_model.
//  2. Add the positional encoding table (if any), broadcast over the batch.
//  3. Chain the encoding through the encoder stack; the final output is the
//     encoder memory.
//  4. Add the positional encoding table to the memory again. The second
//     addition is a deliberate re-injection before decoding.
//  5. Initialize the decoding state to the re-injected memory.
//  6. Chain the state through the decoder stack; every decoder layer attends
//     over the same re-injected memory, which is never updated between
//     layers.
//  7. Project to d_output and squash with sigmoid.
func (t *Transformer[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	if len(x.Shape()) != 3 {
		panic(fmt.Sprintf("Transformer.Forward: expected 3D input [batch, k, d_input], got shape %v", x.Shape()))
	}

	// Embedding module.
	encoding := t.embedding.Forward(x)

	// Add position encoding.
	if t.peTable != nil {
		encoding = encoding.Add(t.peTable)
	}

	// Encoding stack.
	for _, layer := range t.LayersEncoding {
		encoding = layer.Forward(encoding)
	}

	// Add position encoding again before decoding.
	if t.peTable != nil {
		encoding = encoding.Add(t.peTable)
	}

	// Decoding stack: state starts from the memory, the memory stays fixed.
	decoding := encoding
	for _, layer := range t.LayersDecoding {
		decoding = layer.Forward(decoding, encoding)
	}

	// Output module.
	output := t.output.Forward(decoding)
	return t.sigmoid.Forward(output)
}

// Train puts the model in training mode (dropout active).
func (t *Transformer[B]) Train() {
	t.setTraining(true)
}

// Eval puts the model in evaluation mode (dropout disabled, deterministic
// inference). This is the mode a freshly constructed model starts in.
func (t *Transformer[B]) Eval() {
	t.setTraining(false)
}

func (t *Transformer[B]) setTraining(training bool) {
	for _, layer := range t.LayersEncoding {
		layer.SetTraining(training)
	}
	for _, layer := range t.LayersDecoding {
		layer.SetTraining(training)
	}
}

// Config returns the configuration the model was built with.
func (t *Transformer[B]) Config() Config {
	return t.config
}

// PositionalTable returns the fixed positional encoding table [k, d_model],
// or nil when positional encoding is disabled. The table is owned by the
// model and must not be mutated.
func (t *Transformer[B]) PositionalTable() *tensor.Tensor[B] {
	return t.peTable
}

// Parameters returns every trainable parameter: embedding and output
// projections plus all encoder/decoder layer parameters. The positional
// encoding table is fixed and deliberately excluded.
func (t *Transformer[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4+len(t.LayersEncoding)*16+len(t.LayersDecoding)*26)
	params = append(params, t.embedding.Parameters()...)
	for _, layer := range t.LayersEncoding {
		params = append(params, layer.Parameters()...)
	}
	for _, layer := range t.LayersDecoding {
		params = append(params, layer.Parameters()...)
	}
	params = append(params, t.output.Parameters()...)
	return params
}
