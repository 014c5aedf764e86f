package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Query is a single path-query variant: the short name used for labeling
// output artifacts and the command-line flags passed to the benchmark binary.
type Query struct {
	Name  string `yaml:"name"`
	Flags string `yaml:"flags"`
}

// Sweep is an immutable description of one benchmark sweep: the full
// Cartesian product of Topologies x NodeCounts x Queries is executed,
// Count times per combination, with OptFlags appended to every invocation.
// A sweep with Skip set is reported but never executed.
type Sweep struct {
	Name       string   `yaml:"name"`
	Queries    []Query  `yaml:"queries"`
	NodeCounts []int    `yaml:"node_counts"`
	OptFlags   string   `yaml:"opt_flags"`
	OptName    string   `yaml:"opt_name"`
	Topologies []string `yaml:"topologies"`
	Count      int      `yaml:"count"`
	Skip       bool     `yaml:"skip,omitempty"`
}

type Config struct {
	Sweeps []Sweep `yaml:"sweeps"`
}

var defaultQueries = []Query{
	{Name: "tm", Flags: "q1 tm"},
	{Name: "waypoint", Flags: "q1 waypoint"},
	{Name: "congested_link", Flags: "q1 congested_link"},
	{Name: "slice", Flags: "q1 slice"},
	{Name: "firewall", Flags: "q1 firewall"},
	{Name: "ddos", Flags: "q1 ddos"},
}

var defaultTopologies = []string{
	"waxman_02_04",
	"waxman_03_03",
	"waxman_04_02",
	"waxman_05_015",
}

const (
	defaultOptFlags = "-d -l -i -a -c -b --use_fdd"
	defaultOptName  = "fdd"
	defaultCount    = 5
)

// DefaultConfig returns the built-in sweep plan: the main sweep over small
// topologies, and a second sweep over large node counts which is disabled
// until someone deliberately turns it on.
func DefaultConfig() Config {
	return Config{
		Sweeps: []Sweep{
			{
				Name:       "nodes-20-160",
				Queries:    defaultQueries,
				NodeCounts: []int{20, 40, 60, 80, 100, 120, 140, 160},
				OptFlags:   defaultOptFlags,
				OptName:    defaultOptName,
				Topologies: defaultTopologies,
				Count:      defaultCount,
			},
			{
				Name:       "nodes-180-250",
				Queries:    defaultQueries,
				NodeCounts: []int{180, 200, 250},
				OptFlags:   defaultOptFlags,
				OptName:    defaultOptName,
				Topologies: defaultTopologies,
				Count:      defaultCount,
				Skip:       true,
			},
		},
	}
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read sweep config %v: %w", path, err)
	}
	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse sweep config %v: %w", path, err)
	}
	return config, nil
}

// Combinations is the number of benchmark invocations the sweep describes.
func (s *Sweep) Combinations() int {
	return len(s.Topologies) * len(s.NodeCounts) * len(s.Queries) * s.Count
}

// WithoutQueries returns a copy of the sweep with the listed queries removed.
func (s Sweep) WithoutQueries(written map[string]bool) Sweep {
	queries := make([]Query, 0, len(s.Queries))
	for _, query := range s.Queries {
		if !written[query.Name] {
			queries = append(queries, query)
		}
	}
	s.Queries = queries
	return s
}

func (s *Sweep) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sweep name must be set")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("sweep %v has no queries", s.Name)
	}
	if len(s.NodeCounts) == 0 {
		return fmt.Errorf("sweep %v has no node counts", s.Name)
	}
	if len(s.Topologies) == 0 {
		return fmt.Errorf("sweep %v has no topologies", s.Name)
	}
	if s.Count <= 0 {
		return fmt.Errorf("sweep %v has non-positive repetition count %v", s.Name, s.Count)
	}
	if s.OptName == "" {
		return fmt.Errorf("sweep %v has no optimization name", s.Name)
	}
	queries := make(map[string]bool, len(s.Queries))
	for _, query := range s.Queries {
		if query.Name == "" || query.Flags == "" {
			return fmt.Errorf("sweep %v has query with empty name or flags: %+v", s.Name, query)
		}
		if queries[query.Name] {
			return fmt.Errorf("sweep %v has duplicate query %v", s.Name, query.Name)
		}
		queries[query.Name] = true
	}
	for _, nodes := range s.NodeCounts {
		if nodes <= 0 {
			return fmt.Errorf("sweep %v has non-positive node count %v", s.Name, nodes)
		}
	}
	for _, topology := range s.Topologies {
		if _, err := ParseTopology(topology); err != nil {
			return fmt.Errorf("sweep %v has invalid topology: %w", s.Name, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if len(c.Sweeps) == 0 {
		return fmt.Errorf("no sweeps configured")
	}
	names := make(map[string]bool, len(c.Sweeps))
	for i := range c.Sweeps {
		sweep := &c.Sweeps[i]
		if err := sweep.Validate(); err != nil {
			return err
		}
		if names[sweep.Name] {
			return fmt.Errorf("duplicate sweep name %v", sweep.Name)
		}
		names[sweep.Name] = true
	}
	return nil
}
