package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ignitionAdapters/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSpotCommand(t *testing.T) {
	out, err := execute(t, "spot", "--tick", "27000")
	require.NoError(t, err)
	require.JSONEq(t, `{"tick":27000,"spot":"1"}`, out)

	_, err = execute(t, "spot", "--tick", "54001")
	require.Error(t, err)
}

func TestTickCommand(t *testing.T) {
	out, err := execute(t, "tick", "--spot", "1")
	require.NoError(t, err)
	require.JSONEq(t, `{"spot":"1","tick":27000,"in_range":true}`, out)

	_, err = execute(t, "tick", "--spot", "0")
	require.Error(t, err)
}

func TestBinsCommand(t *testing.T) {
	out, err := execute(t, "bins", "--active", "100", "--span", "10", "--count", "4")
	require.NoError(t, err)
	require.JSONEq(t, `{"active_bin":100,"lower_bins":[90,80],"higher_bins":[110,120]}`, out)
}

func TestCaviarNineCommand(t *testing.T) {
	dir := t.TempDir()
	states := filepath.Join(dir, "states.jsonl")
	lines := strings.Join([]string{
		`{"pool":"component_a","resource_x":"x","resource_y":"y","active_tick":27000,"bin_span":10}`,
		`{"pool":"component_b","resource_x":"x","resource_y":"z","active_tick":null,"bin_span":10}`,
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(states, []byte(lines), 0o644))
	out := filepath.Join(dir, "report.jsonl")

	_, err := execute(t, "caviarnine", "--states", states, "--out", out, "--count", "2", "--log-level", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, rows, 2)

	byPool := make(map[string]poolReport)
	for _, row := range rows {
		var report poolReport
		require.NoError(t, json.Unmarshal([]byte(row), &report))
		byPool[report.Pool] = report
	}
	require.Equal(t, "1", byPool["component_a"].Spot)
	require.Equal(t, []uint32{26990}, byPool["component_a"].LowerBins)
	require.Equal(t, []uint32{27010}, byPool["component_a"].HigherBins)
	require.Equal(t, "no active tick", byPool["component_b"].Error)
}

func TestBuildPoolReportOutOfGrid(t *testing.T) {
	tick := uint32(60000)
	report := buildPoolReport(model.BinPoolState{Pool: "component_c", ActiveTick: &tick, BinSpan: 10}, 4)
	require.Equal(t, "price unavailable", report.Error)
	require.Empty(t, report.Spot)
}

func TestBuildPoolReportKeepsEmptyBins(t *testing.T) {
	tick := uint32(27000)
	report := buildPoolReport(model.BinPoolState{Pool: "component_d", ActiveTick: &tick, BinSpan: 54000}, 6)
	require.Empty(t, report.Error)
	require.Equal(t, "1", report.Spot)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	require.Contains(t, string(data), `"lower_bins":[]`)
	require.Contains(t, string(data), `"higher_bins":[]`)
}
