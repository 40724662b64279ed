package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ignitionAdapters/internal/adapter"
	"ignitionAdapters/internal/config"
	"ignitionAdapters/internal/model"
	"ignitionAdapters/internal/storage"
)

// poolReport is one line of caviarnine output. Error is set instead of the
// spot when the pool cannot be priced; the bin lists are always present.
type poolReport struct {
	Pool       string   `json:"pool"`
	ResourceX  string   `json:"resource_x"`
	ResourceY  string   `json:"resource_y"`
	ActiveTick *uint32  `json:"active_tick"`
	BinSpan    uint32   `json:"bin_span"`
	Spot       string   `json:"spot,omitempty"`
	LowerBins  []uint32 `json:"lower_bins"`
	HigherBins []uint32 `json:"higher_bins"`
	Error      string   `json:"error,omitempty"`
}

func runCaviarNine(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCaviarNine(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	states, err := storage.OpenBinPoolStateFile(cfg.States)
	if err != nil {
		return err
	}

	reports := make([]poolReport, 0, len(states.States()))
	var priced, skipped int
	for _, state := range states.States() {
		report := buildPoolReport(state, cfg.DesiredBins)
		if report.Error != "" {
			skipped++
			logger.Warn("pool not priced", zap.String("pool", state.Pool), zap.String("error", report.Error))
		} else {
			priced++
		}
		reports = append(reports, report)
	}

	if cfg.Out == "" {
		for _, report := range reports {
			if err := printJSON(cmd, report); err != nil {
				return err
			}
		}
	} else if err := storage.AppendJSONL(storage.NewJsonlStorage(cfg.Out), reports); err != nil {
		return err
	}

	logger.Info("caviarnine report complete",
		zap.String("states", cfg.States),
		zap.String("out", cfg.Out),
		zap.Int("priced", priced),
		zap.Int("skipped", skipped),
		zap.Uint32("count", cfg.DesiredBins),
	)
	return nil
}

func buildPoolReport(state model.BinPoolState, desired uint32) poolReport {
	report := poolReport{
		Pool:       state.Pool,
		ResourceX:  state.ResourceX,
		ResourceY:  state.ResourceY,
		ActiveTick: state.ActiveTick,
		BinSpan:    state.BinSpan,
		LowerBins:  []uint32{},
		HigherBins: []uint32{},
	}

	price, err := adapter.BinPrice(state)
	if err != nil {
		report.Error = reportError(err)
		return report
	}
	selected, err := adapter.BinWindow(state, desired)
	if err != nil {
		report.Error = reportError(err)
		return report
	}

	report.Spot = price.Price.String()
	if selected.LowerBins != nil {
		report.LowerBins = selected.LowerBins
	}
	if selected.HigherBins != nil {
		report.HigherBins = selected.HigherBins
	}
	return report
}

func reportError(err error) string {
	switch {
	case errors.Is(err, adapter.ErrNoActiveTick):
		return "no active tick"
	case errors.Is(err, adapter.ErrPriceUnavailable):
		return "price unavailable"
	default:
		return err.Error()
	}
}
