package nn

import (
	"fmt"
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// regularPEPeriod is the period, in timesteps, of the "regular" positional
// encoding. 24 matches hourly data with a daily cycle.
const regularPEPeriod = 24

// PositionalEncoding is a tagged enumeration of the recognized positional
// encoding variants.
type PositionalEncoding int

// Recognized positional encoding variants.
const (
	// PENone disables positional encoding.
	PENone PositionalEncoding = iota
	// PEOriginal is the sinusoidal encoding from "Attention is All You Need".
	PEOriginal
	// PERegular is a single-frequency periodic encoding.
	PERegular
)

// String returns the configuration name of the variant.
func (pe PositionalEncoding) String() string {
	switch pe {
	case PENone:
		return "none"
	case PEOriginal:
		return "original"
	case PERegular:
		return "regular"
	default:
		return "unknown"
	}
}

// ParsePositionalEncoding resolves a configuration name to a variant.
// An empty name or "none" disables positional encoding. Any other
// unrecognized name is a configuration error naming the offending value and
// the allowed set — there is no silent fallback.
func ParsePositionalEncoding(name string) (PositionalEncoding, error) {
	switch name {
	case "", "none":
		return PENone, nil
	case "original":
		return PEOriginal, nil
	case "regular":
		return PERegular, nil
	default:
		return PENone, fmt.Errorf(
			`positional encoding %q not understood, must be one of "original", "regular" or "none"`, name)
	}
}

// Table computes the fixed positional encoding table for this variant:
// a deterministic, non-trainable [length, width] tensor. PENone returns nil.
func (pe PositionalEncoding) Table(length, width int) *tensor.RawTensor {
	switch pe {
	case PENone:
		return nil
	case PEOriginal:
		return originalPE(length, width)
	case PERegular:
		return regularPE(length, width)
	default:
		panic(fmt.Sprintf("PositionalEncoding.Table: unknown variant %d", int(pe)))
	}
}

// originalPE generates the sinusoidal table from "Attention is All You Need":
//
//	PE(pos, 2i)   = sin(pos / 10000^(2i/width))
//	PE(pos, 2i+1) = cos(pos / 10000^(2i/width))
//
// Deterministic in (length, width); no learned state.
func originalPE(length, width int) *tensor.RawTensor {
	raw, err := tensor.NewRaw(tensor.Shape{length, width})
	if err != nil {
		panic(fmt.Sprintf("originalPE: %v", err))
	}

	data := raw.Data()
	for pos := 0; pos < length; pos++ {
		for i := 0; i < width; i++ {
			angle := float64(pos) / math.Pow(10000.0, float64(2*(i/2))/float64(width))
			idx := pos*width + i
			if i%2 == 0 {
				data[idx] = float32(math.Sin(angle))
			} else {
				data[idx] = float32(math.Cos(angle))
			}
		}
	}
	return raw
}

// regularPE generates a single-frequency periodic table: every feature column
// carries sin(2π·pos/period) with a period of regularPEPeriod timesteps.
//
// Deterministic in (length, width); no learned state.
func regularPE(length, width int) *tensor.RawTensor {
	raw, err := tensor.NewRaw(tensor.Shape{length, width})
	if err != nil {
		panic(fmt.Sprintf("regularPE: %v", err))
	}

	data := raw.Data()
	for pos := 0; pos < length; pos++ {
		v := float32(math.Sin(2 * math.Pi * float64(pos) / regularPEPeriod))
		for i := 0; i < width; i++ {
			data[pos*width+i] = v
		}
	}
	return raw
}
