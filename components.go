package main

import "context"

// Measurement is one wall-clock timing of one benchmark invocation.
type Measurement struct {
	Sweep    string
	Topology string
	Nodes    int
	Query    string
	Attempt  int
	Seconds  float64
}

type SweepReport struct {
	Sweep        string
	Measurements []Measurement
}

type SweepRunner interface {
	Name() string
	Run(ctx context.Context, sweep Sweep) (SweepReport, error)
}

type ResultSink interface {
	RecordParameters(params map[string]any) error
	RecordMeasurements(measurements []Measurement) error
}
