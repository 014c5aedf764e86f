package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecRunner drives the benchmark binary over the full Cartesian product of
// a sweep. The binary is a black box: every invocation gets the query flags,
// the sweep-wide optimization flags and the topology/size arguments, and is
// expected to write its artifact to the --output path labeled with the
// optimization and query names.
type ExecRunner struct {
	Binary    string
	OutDir    string
	Benchmark Benchmark
}

func (r *ExecRunner) Name() string { return "exec" }

func (r *ExecRunner) commandArgs(sweep Sweep, query Query, topology string, nodes int) []string {
	args := []string{r.Binary}
	args = append(args, strings.Fields(query.Flags)...)
	args = append(args, strings.Fields(sweep.OptFlags)...)
	args = append(args, "--topology", topology, "--num_nodes", strconv.Itoa(nodes))
	if r.OutDir != "" {
		artifact := fmt.Sprintf("%v_%v_%v_%v.txt", sweep.OptName, query.Name, topology, nodes)
		args = append(args, "--output", filepath.Join(r.OutDir, artifact))
	}
	return args
}

func (r *ExecRunner) Run(ctx context.Context, sweep Sweep) (SweepReport, error) {
	report := SweepReport{Sweep: sweep.Name}
	benchmark := r.Benchmark
	benchmark.Count = sweep.Count
	for _, topology := range sweep.Topologies {
		for _, nodes := range sweep.NodeCounts {
			for _, query := range sweep.Queries {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				Logger.Infof("running query %v on %v with %v nodes", query.Name, topology, nodes)
				args := r.commandArgs(sweep, query, topology, nodes)
				err := benchmark.WarmupCmd(args)
				if err != nil {
					return report, fmt.Errorf("failed to warmup query %v on %v with %v nodes: %w", query.Name, topology, nodes, err)
				}
				seconds, _, err := benchmark.RunCmd(args)
				if err != nil {
					return report, fmt.Errorf("failed to run query %v on %v with %v nodes: %w", query.Name, topology, nodes, err)
				}
				for attempt, elapsed := range seconds {
					report.Measurements = append(report.Measurements, Measurement{
						Sweep:    sweep.Name,
						Topology: topology,
						Nodes:    nodes,
						Query:    query.Name,
						Attempt:  attempt + 1,
						Seconds:  elapsed,
					})
				}
			}
		}
	}
	return report, nil
}

// DryRunner logs every combination a sweep would execute without invoking
// the benchmark binary.
type DryRunner struct{}

func (r *DryRunner) Name() string { return "dry" }

func (r *DryRunner) Run(ctx context.Context, sweep Sweep) (SweepReport, error) {
	for _, topology := range sweep.Topologies {
		for _, nodes := range sweep.NodeCounts {
			for _, query := range sweep.Queries {
				if err := ctx.Err(); err != nil {
					return SweepReport{Sweep: sweep.Name}, err
				}
				Logger.Infof("would run query %v on %v with %v nodes, %v times", query.Name, topology, nodes, sweep.Count)
			}
		}
	}
	return SweepReport{Sweep: sweep.Name}, nil
}
