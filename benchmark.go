package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Benchmark executes a single command line repeatedly and measures the
// wall-clock time of every attempt.
type Benchmark struct {
	Warmup      int
	Count       int
	ClearCaches bool
}

func clearCaches() error {
	switch runtime.GOOS {
	case "linux":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("sh", "-c", "echo 3 | sudo tee /proc/sys/vm/drop_caches").Run(); err != nil {
			return err
		}
		return nil
	case "darwin":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("purge").Run(); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unable to clear caches for platform '%v'", runtime.GOOS)
}

func (b *Benchmark) clearCachesIfNeeded() error {
	if !b.ClearCaches {
		return nil
	}
	Logger.Info("clear caches")
	return clearCaches()
}

func (b *Benchmark) runCmd(args []string) ([]string, error) {
	cmd := exec.Command(args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("err=%w, out=%v", err, string(output))
	}
	lines := strings.Split(string(output), "\n")
	return lines, nil
}

func (b *Benchmark) WarmupCmd(args []string) error {
	for i := 0; i < b.Warmup; i++ {
		Logger.Infof("running warmup #%v/%v cmd %v", i+1, b.Warmup, args)
		_, err := b.runCmd(args)
		if err != nil {
			return fmt.Errorf("warmup #%v failed: %w", i, err)
		}
	}
	return nil
}

// RunCmd performs Count measured attempts and returns the wall-clock seconds
// of every attempt plus the output lines of the last one.
func (b *Benchmark) RunCmd(args []string) ([]float64, []string, error) {
	var lines []string
	var seconds []float64
	for i := 0; i < b.Count; i++ {
		err := b.clearCachesIfNeeded()
		if err != nil {
			return nil, nil, err
		}

		Logger.Infof("running attempt #%v/%v cmd %v", i+1, b.Count, args)

		start := time.Now()
		lines, err = b.runCmd(args)
		elapsed := time.Since(start)

		if err != nil {
			return nil, nil, fmt.Errorf("attempt #%v failed: %w", i, err)
		}
		seconds = append(seconds, elapsed.Seconds())
	}
	return seconds, lines, nil
}
