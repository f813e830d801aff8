// Package main provides a performance benchmarking tool for the annofabcli
// read commands. Each command runs several times without the response cache
// and then with the SQLite cache; the first cached run is cold and the rest
// are averaged as warm. Results are written as CSV.
//
// Prerequisites:
// - annofabcli binary installed and available in PATH
// - Credentials in ANNOFAB_PAT or ANNOFAB_USER_ID / ANNOFAB_PASSWORD
// - Read access to the benchmarked projects
//
// Usage: go run benchmark/main.go project-id [project-id...]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Project     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Projects    []string
	Timeout     time.Duration
	Parallelism int
	NoCacheRuns int
	CacheRuns   int
	Commands    []string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s project-id [project-id...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Projects:    os.Args[1:],
		Timeout:     5 * time.Minute,
		Parallelism: 8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Commands: []string{
			"annotation_specs list_label",
			"annotation_specs list_attribute",
			"project_member list",
			"task list",
			"statistics summarize_task_count",
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("annofabcli", "cache", "clear", "--yes")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the binary and credentials exist.
func checkPrerequisites() error {
	if _, err := exec.LookPath("annofabcli"); err != nil {
		return errors.New("annofabcli binary not found in PATH")
	}
	if os.Getenv("ANNOFAB_PAT") == "" && (os.Getenv("ANNOFAB_USER_ID") == "" || os.Getenv("ANNOFAB_PASSWORD") == "") {
		return errors.New("set ANNOFAB_PAT or ANNOFAB_USER_ID and ANNOFAB_PASSWORD")
	}
	return nil
}

// runBenchmarks executes every command against every project.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d projects, %v timeout, parallelism %d, no-cache: %d runs, cache: %d runs\n",
		len(config.Projects), config.Timeout, config.Parallelism, config.NoCacheRuns, config.CacheRuns)

	for _, project := range config.Projects {
		fmt.Printf("Benchmarking %s\n", project)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, project, command))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, project, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, project)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, project, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "n/a"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "FAILED"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Project:     project,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes one command numRuns times and returns the cold time and the warm times.
// Runs that fail or time out are not counted.
func runBenchmark(config BenchmarkConfig, project, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append(strings.Fields(command),
		"--project-id", project,
		"--cache-backend", cacheBackend,
		"--parallelism", fmt.Sprint(config.Parallelism),
		"--format", "json",
		"--output-file", os.DevNull,
	)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "annofabcli", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err != nil {
			fmt.Printf("    run failed: %v\n%s", err, string(output))
			continue
		}
		times = append(times, elapsed)
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/annofabcli_benchmark_%s.csv", os.TempDir(), timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"project", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Project, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final results grouped by command.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Project, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
