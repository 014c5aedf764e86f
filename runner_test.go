package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecRunnerCommandArgs(t *testing.T) {
	runner := ExecRunner{Binary: "pyretic_test", OutDir: "results"}
	sweep := Sweep{
		Name:     "small",
		OptFlags: "-d -l --use_fdd",
		OptName:  "fdd",
	}
	query := Query{Name: "slice", Flags: "q1 slice"}

	args := runner.commandArgs(sweep, query, "waxman_02_04", 40)
	require.Equal(t, []string{
		"pyretic_test",
		"q1", "slice",
		"-d", "-l", "--use_fdd",
		"--topology", "waxman_02_04",
		"--num_nodes", "40",
		"--output", filepath.Join("results", "fdd_slice_waxman_02_04_40.txt"),
	}, args)

	runner.OutDir = ""
	args = runner.commandArgs(sweep, query, "waxman_02_04", 40)
	require.NotContains(t, args, "--output")
}

func TestExecRunnerCoversCartesianProduct(t *testing.T) {
	runner := ExecRunner{Binary: "true"}
	sweep := Sweep{
		Name:       "tiny",
		Queries:    []Query{{Name: "tm", Flags: "q1 tm"}, {Name: "slice", Flags: "q1 slice"}},
		NodeCounts: []int{10, 20},
		OptFlags:   "--use_fdd",
		OptName:    "fdd",
		Topologies: []string{"waxman_02_04"},
		Count:      2,
	}

	report, err := runner.Run(context.Background(), sweep)
	require.Nil(t, err)
	require.Len(t, report.Measurements, sweep.Combinations())

	seen := make(map[Measurement]bool)
	for _, m := range report.Measurements {
		require.Equal(t, "tiny", m.Sweep)
		require.GreaterOrEqual(t, m.Seconds, 0.0)
		m.Seconds = 0
		require.False(t, seen[m], "duplicate combination %+v", m)
		seen[m] = true
	}
	require.True(t, seen[Measurement{Sweep: "tiny", Topology: "waxman_02_04", Nodes: 20, Query: "slice", Attempt: 2}])
}

func TestExecRunnerReportsFailure(t *testing.T) {
	runner := ExecRunner{Binary: "false"}
	sweep := Sweep{
		Name:       "failing",
		Queries:    []Query{{Name: "tm", Flags: "q1 tm"}},
		NodeCounts: []int{10},
		OptName:    "fdd",
		Topologies: []string{"waxman_02_04"},
		Count:      1,
	}

	_, err := runner.Run(context.Background(), sweep)
	require.ErrorContains(t, err, "failed to run query tm on waxman_02_04 with 10 nodes")
}

func TestExecRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := ExecRunner{Binary: "true"}
	sweep := Sweep{
		Name:       "cancelled",
		Queries:    []Query{{Name: "tm", Flags: "q1 tm"}},
		NodeCounts: []int{10},
		OptName:    "fdd",
		Topologies: []string{"waxman_02_04"},
		Count:      1,
	}

	report, err := runner.Run(ctx, sweep)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Measurements)
}

func TestDryRunnerProducesNoMeasurements(t *testing.T) {
	runner := DryRunner{}
	report, err := runner.Run(context.Background(), DefaultConfig().Sweeps[0])
	require.Nil(t, err)
	require.Equal(t, "nodes-20-160", report.Sweep)
	require.Empty(t, report.Measurements)
}
