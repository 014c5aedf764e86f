package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

const Version = "v1"

// System runs the configured sweeps in order, strictly sequentially, and
// records parameters and measurements through the sink. Sweeps marked as
// skipped are counted but never handed to the runner.
type System struct {
	config Config
	runner SweepRunner
	sink   ResultSink
	id     string
}

// resumableSink is implemented by sinks that can tell which queries of a
// sweep already have recorded measurements from an interrupted run.
type resumableSink interface {
	WrittenQueries(sweep string) (map[string]bool, error)
}

type SysInfo struct {
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	CPUFreq  float64
	RAM      float64
}

func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	totalFreq := 0.0
	for _, cpu := range cpuStat {
		totalFreq += cpu.Mhz
	}
	info := SysInfo{
		Arch:     runtime.GOARCH,
		Hostname: hostStat.Hostname,
		Platform: hostStat.Platform,
		CPUCount: len(cpuStat),
		CPUFreq:  totalFreq / float64(len(cpuStat)) * 1000,
		RAM:      float64(vmStat.Total) / 1024 / 1024 / 1024,
	}
	return info
}

func (s *System) Run(ctx context.Context) error {
	Logger.Infof("start benchmark run %v", s.id)

	err := s.config.Validate()
	if err != nil {
		return fmt.Errorf("invalid sweep configuration: %w", err)
	}

	info := HostStat()
	Logger.Infof("host stat: %+v", info)

	err = s.sink.RecordParameters(map[string]any{
		"run":      s.id,
		"runner":   s.runner.Name(),
		"version":  Version,
		"time":     time.Now().Format("2006-01-02 15:04:05"),
		"arch":     info.Arch,
		"hostname": info.Hostname,
		"platform": info.Platform,
		"ram":      info.RAM,
		"cpu":      info.CPUCount,
		"freq":     info.CPUFreq,
	})
	if err != nil {
		return fmt.Errorf("failed to record run parameters: %w", err)
	}

	executed, skipped := 0, 0
	for _, sweep := range s.config.Sweeps {
		if sweep.Skip {
			Logger.Infof("skipping sweep %v (%v combinations)", sweep.Name, sweep.Combinations())
			skipped++
			continue
		}
		if resumable, ok := s.sink.(resumableSink); ok {
			written, err := resumable.WrittenQueries(sweep.Name)
			if err != nil {
				return fmt.Errorf("failed to fetch written queries for sweep %v: %w", sweep.Name, err)
			}
			sweep = sweep.WithoutQueries(written)
			if len(sweep.Queries) == 0 {
				Logger.Infof("sweep %v already has measurements for every query", sweep.Name)
				executed++
				continue
			}
		}
		Logger.Infof("running sweep %v (%v combinations)", sweep.Name, sweep.Combinations())
		report, err := s.runner.Run(ctx, sweep)
		if err != nil {
			return fmt.Errorf("failed to execute sweep %v: %w", sweep.Name, err)
		}
		err = s.sink.RecordMeasurements(report.Measurements)
		if err != nil {
			return fmt.Errorf("failed to record measurements for sweep %v: %w", sweep.Name, err)
		}
		executed++
	}
	Logger.Infof("finished benchmark run %v: %v sweeps executed, %v skipped", s.id, executed, skipped)
	return nil
}
