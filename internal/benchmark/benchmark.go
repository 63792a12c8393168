// Package benchmark times repeated calls of the preprocessing and inference
// stages and reports latency percentiles with memory deltas.
package benchmark

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// String returns a formatted string representation of the timer.
func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

// String returns a formatted string representation of memory stats.
func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.AllocBytes/1024,
		m.TotalAllocBytes/1024,
		m.SysBytes/1024,
		m.NumGC,
		m.GCCPUFraction*100)
}

// Result holds the timings of one benchmark. Durations only cover the
// measured iterations, never the warm-up calls.
type Result struct {
	Name         string
	Iterations   int
	Total        time.Duration
	Min          time.Duration
	Max          time.Duration
	Mean         time.Duration
	P50          time.Duration
	P95          time.Duration
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Error        error
}

// AllocatedKB is the growth of TotalAllocBytes over the run in KB.
func (r Result) AllocatedKB() uint64 {
	return (r.MemoryAfter.TotalAllocBytes - r.MemoryBefore.TotalAllocBytes) / 1024
}

// String returns a formatted string representation of the benchmark result.
func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", r.Name, r.Error)
	}
	return fmt.Sprintf("%s: %d iterations, mean: %v, p50: %v, p95: %v, min: %v, max: %v, alloc: %d KB",
		r.Name, r.Iterations, r.Mean, r.P50, r.P95, r.Min, r.Max, r.AllocatedKB())
}

// Benchmark represents a benchmark function.
type Benchmark struct {
	Name string
	Func func() error
}

// Suite manages multiple benchmarks.
type Suite struct {
	benchmarks []Benchmark
	warmup     int
	results    []Result
	mu         sync.Mutex
}

// NewSuite creates a suite that runs warmup untimed calls before measuring.
func NewSuite(warmup int) *Suite {
	return &Suite{
		benchmarks: make([]Benchmark, 0),
		warmup:     max(warmup, 0),
		results:    make([]Result, 0),
	}
}

// Add adds a benchmark to the suite.
func (s *Suite) Add(name string, fn func() error) {
	s.benchmarks = append(s.benchmarks, Benchmark{
		Name: name,
		Func: fn,
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) Result {
	for _, b := range s.benchmarks {
		if b.Name == name {
			return s.runBenchmark(b, iterations)
		}
	}
	return Result{
		Name:  name,
		Error: fmt.Errorf("benchmark '%s' not found", name),
	}
}

// RunAll runs all benchmarks in the suite in the order they were added.
func (s *Suite) RunAll(iterations int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		s.results = append(s.results, s.runBenchmark(b, iterations))
	}
	return s.results
}

func (s *Suite) runBenchmark(b Benchmark, iterations int) Result {
	res := Result{Name: b.Name, Iterations: iterations}
	if iterations <= 0 {
		res.Error = errors.New("iterations must be positive")
		return res
	}

	for range s.warmup {
		if err := b.Func(); err != nil {
			res.Error = fmt.Errorf("warm-up: %w", err)
			return res
		}
	}

	// Force garbage collection before measuring
	runtime.GC()
	res.MemoryBefore = GetMemoryStats()

	samples := make([]time.Duration, 0, iterations)
	for range iterations {
		timer := NewTimer(b.Name)
		err := b.Func()
		samples = append(samples, timer.Stop())
		if err != nil {
			res.Error = err
			break
		}
	}

	res.MemoryAfter = GetMemoryStats()
	summarize(&res, samples)
	return res
}

func summarize(res *Result, samples []time.Duration) {
	if len(samples) == 0 {
		return
	}
	slices.Sort(samples)
	for _, d := range samples {
		res.Total += d
	}
	res.Iterations = len(samples)
	res.Min = samples[0]
	res.Max = samples[len(samples)-1]
	res.Mean = res.Total / time.Duration(len(samples))
	res.P50 = percentile(samples, 50)
	res.P95 = percentile(samples, 95)
}

// percentile returns the nearest-rank percentile of sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// Results returns the last run results.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// PrintResults writes formatted benchmark results to w.
func (s *Suite) PrintResults(w io.Writer) {
	results := s.Results()
	_, _ = fmt.Fprintln(w, "Benchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, result := range results {
		_, _ = fmt.Fprintln(w, result.String())
	}
}
