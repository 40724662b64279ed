package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ignitionAdapters/internal/bins"
	"ignitionAdapters/internal/decimal"
	"ignitionAdapters/internal/tickmath"
)

type spotOutput struct {
	Tick uint32          `json:"tick"`
	Spot decimal.Decimal `json:"spot"`
}

type tickOutput struct {
	Spot    decimal.Decimal `json:"spot"`
	Tick    uint32          `json:"tick"`
	InRange bool            `json:"in_range"`
}

func runSpot(cmd *cobra.Command, _ []string) error {
	tick, err := cmd.Flags().GetUint32("tick")
	if err != nil {
		return err
	}
	spot, ok := tickmath.TickToSpot(tick)
	if !ok {
		return fmt.Errorf("tick %d has no spot price", tick)
	}
	return printJSON(cmd, spotOutput{Tick: tick, Spot: spot})
}

func runTick(cmd *cobra.Command, _ []string) error {
	raw, err := cmd.Flags().GetString("spot")
	if err != nil {
		return err
	}
	spot, err := decimal.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse spot: %w", err)
	}
	tick, ok := tickmath.SpotToTick(spot)
	if !ok {
		return fmt.Errorf("spot %s has no tick", spot)
	}
	return printJSON(cmd, tickOutput{Spot: spot, Tick: tick, InRange: tick <= tickmath.MaxTick})
}

func runBins(cmd *cobra.Command, _ []string) error {
	active, err := cmd.Flags().GetUint32("active")
	if err != nil {
		return err
	}
	span, err := cmd.Flags().GetUint32("span")
	if err != nil {
		return err
	}
	count, err := cmd.Flags().GetUint32("count")
	if err != nil {
		return err
	}
	return printJSON(cmd, bins.Select(active, span, count))
}
