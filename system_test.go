package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	sweeps []Sweep
	err    error
}

func (r *stubRunner) Name() string { return "stub" }

func (r *stubRunner) Run(ctx context.Context, sweep Sweep) (SweepReport, error) {
	r.sweeps = append(r.sweeps, sweep)
	if r.err != nil {
		return SweepReport{}, r.err
	}
	return SweepReport{
		Sweep:        sweep.Name,
		Measurements: []Measurement{{Sweep: sweep.Name, Topology: sweep.Topologies[0], Nodes: sweep.NodeCounts[0], Query: sweep.Queries[0].Name, Attempt: 1, Seconds: 0.1}},
	}, nil
}

func TestRunExecutesOnlyEnabledSweeps(t *testing.T) {
	runner := &stubRunner{}
	sink := &MemorySink{}
	system := System{config: DefaultConfig(), runner: runner, sink: sink, id: "test"}

	require.Nil(t, system.Run(context.Background()))

	require.Len(t, runner.sweeps, 1)
	executed := runner.sweeps[0]
	require.Equal(t, "nodes-20-160", executed.Name)
	require.Equal(t, []int{20, 40, 60, 80, 100, 120, 140, 160}, executed.NodeCounts)
	require.Equal(t, "-d -l -i -a -c -b --use_fdd", executed.OptFlags)
	require.Equal(t, "fdd", executed.OptName)
	require.Len(t, executed.Queries, 6)

	require.Len(t, sink.Measurements, 1)
	require.Equal(t, "nodes-20-160", sink.Measurements[0].Sweep)
	require.Equal(t, "test", sink.Params["run"])
	require.Equal(t, "stub", sink.Params["runner"])
}

func TestRunSkipsEverything(t *testing.T) {
	config := DefaultConfig()
	for i := range config.Sweeps {
		config.Sweeps[i].Skip = true
	}
	runner := &stubRunner{}
	system := System{config: config, runner: runner, sink: &MemorySink{}, id: "test"}

	require.Nil(t, system.Run(context.Background()))
	require.Empty(t, runner.sweeps)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	runner := &stubRunner{}
	system := System{config: Config{}, runner: runner, sink: &MemorySink{}, id: "test"}

	require.ErrorContains(t, system.Run(context.Background()), "invalid sweep configuration")
	require.Empty(t, runner.sweeps)
}

func TestRunPropagatesRunnerFailure(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("binary missing")}
	system := System{config: DefaultConfig(), runner: runner, sink: &MemorySink{}, id: "test"}

	err := system.Run(context.Background())
	require.ErrorContains(t, err, "failed to execute sweep nodes-20-160")
	require.ErrorContains(t, err, "binary missing")
	require.Len(t, runner.sweeps, 1)
}

type resumingSink struct {
	MemorySink
	written map[string]bool
}

func (s *resumingSink) WrittenQueries(sweep string) (map[string]bool, error) {
	return s.written, nil
}

func TestRunResumesInterruptedSweep(t *testing.T) {
	runner := &stubRunner{}
	sink := &resumingSink{written: map[string]bool{"tm": true, "waypoint": true}}
	system := System{config: DefaultConfig(), runner: runner, sink: sink, id: "test"}

	require.Nil(t, system.Run(context.Background()))
	require.Len(t, runner.sweeps, 1)
	require.Len(t, runner.sweeps[0].Queries, 4)
	require.Equal(t, "congested_link", runner.sweeps[0].Queries[0].Name)
}

func TestRunSkipsFullyWrittenSweep(t *testing.T) {
	written := make(map[string]bool)
	for _, query := range DefaultConfig().Sweeps[0].Queries {
		written[query.Name] = true
	}
	runner := &stubRunner{}
	system := System{config: DefaultConfig(), runner: runner, sink: &resumingSink{written: written}, id: "test"}

	require.Nil(t, system.Run(context.Background()))
	require.Empty(t, runner.sweeps)
}
