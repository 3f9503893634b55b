package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tempo-ml/tempo/backend/cpu"
	"github.com/tempo-ml/tempo/internal/config"
	"github.com/tempo-ml/tempo/nn"
	"github.com/tempo-ml/tempo/tensor"
)

var (
	specPath   string
	inputPath  string
	outputPath string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "run the transformer over CSV windows",
	Long: `forecast builds a transformer from the YAML model spec, reads a CSV
file whose rows are timesteps (d_input columns each, seq_len rows per
window), runs the forward pass in evaluation mode and writes the output
windows as CSV.

The model is randomly initialized; loading trained weights is handled by
external tooling.`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVarP(&specPath, "config", "c", "", "YAML model spec (required)")
	forecastCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV of timestep rows (required)")
	forecastCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default stdout)")
	_ = forecastCmd.MarkFlagRequired("config")
	_ = forecastCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	spec, err := config.Load(specPath)
	if err != nil {
		return err
	}
	cfg := spec.ToConfig()

	log.Debugf("model spec: %+v", cfg)

	backend := cpu.New()
	model, err := nn.NewTransformer(cfg, backend)
	if err != nil {
		return err
	}
	model.Eval()

	input, batch, err := readWindows(inputPath, cfg.SeqLen, cfg.DInput, backend)
	if err != nil {
		return err
	}
	log.Infof("loaded %d window(s) of %d timesteps × %d features", batch, cfg.SeqLen, cfg.DInput)

	output := model.Forward(input)

	if err := writeWindows(outputPath, output); err != nil {
		return err
	}

	color.Green("forecast complete: %d window(s) × %d timesteps × %d outputs",
		batch, cfg.SeqLen, cfg.DOutput)
	return nil
}

// readWindows reads a CSV of timestep rows and packs them into a
// [batch, seqLen, dInput] tensor. The row count must be a multiple of seqLen.
func readWindows(path string, seqLen, dInput int, backend *cpu.Backend) (*tensor.Tensor[*cpu.Backend], int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("reading input CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("input CSV %s is empty", path)
	}
	if len(records)%seqLen != 0 {
		return nil, 0, fmt.Errorf("input has %d rows, not a multiple of seq_len %d", len(records), seqLen)
	}

	batch := len(records) / seqLen
	data := make([]float32, 0, len(records)*dInput)
	for rowIdx, row := range records {
		if len(row) != dInput {
			return nil, 0, fmt.Errorf("row %d has %d columns, expected d_input %d", rowIdx+1, len(row), dInput)
		}
		for _, field := range row {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: parsing %q: %w", rowIdx+1, field, err)
			}
			data = append(data, float32(v))
		}
	}

	t, err := tensor.FromSlice(data, tensor.Shape{batch, seqLen, dInput}, backend)
	if err != nil {
		return nil, 0, err
	}
	return t, batch, nil
}

// writeWindows writes a [batch, seqLen, dOutput] tensor as CSV timestep rows.
func writeWindows(path string, t *tensor.Tensor[*cpu.Backend]) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	shape := t.Shape()
	batch, seqLen, dOutput := shape[0], shape[1], shape[2]
	data := t.Data()

	w := csv.NewWriter(out)
	defer w.Flush()

	row := make([]string, dOutput)
	for i := 0; i < batch*seqLen; i++ {
		for j := 0; j < dOutput; j++ {
			row[j] = strconv.FormatFloat(float64(data[i*dOutput+j]), 'g', -1, 32)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
