package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"

	"wspsolver/pkg/model"
	"wspsolver/pkg/sat"
)

// benchmarkConfig is the YAML description of a benchmark run: instance
// path patterns, the encoder×solver grid, and shared enumeration
// options.
type benchmarkConfig struct {
	Instances []string `yaml:"instances"`
	Encoders  []string `yaml:"encoders"`
	Solvers   []string `yaml:"solvers"`
	Solutions uint64   `yaml:"solutions"`
	Timeout   string   `yaml:"timeout"`
	Output    string   `yaml:"output"`
}

func main() {
	configPtr := flag.String("config", "benchmark.yaml", "Path to the YAML benchmark configuration")
	flag.Parse()

	content, err := os.ReadFile(*configPtr)
	if err != nil {
		log.Fatalf("cannot read configuration file: %v", err)
	}
	config, options, err := loadConfig(content)
	if err != nil {
		log.Fatalf("cannot parse configuration file: %v", err)
	}

	instances := getInstances(config.Instances)
	results := make([]model.BatchResult, 0, len(instances)*len(config.Encoders)*len(config.Solvers))

	for _, encoder := range config.Encoders {
		for _, solver := range config.Solvers {
			fmt.Printf("Benchmarking %v instances with encoder \"%v\" and solver \"%v\"\n", len(instances), encoder, solver)

			rows, err := model.RunBatch(instances, encoder, solver, options)
			if err != nil {
				log.Fatalf("an error occurred during the batch with encoder \"%v\" and solver \"%v\": %v", encoder, solver, err)
			}
			results = append(results, rows...)
		}
	}

	toCsv(config.Output, results)
}

// loadConfig parses and validates the YAML configuration. Encoders
// default to all of them, solvers to gini alone.
func loadConfig(content []byte) (benchmarkConfig, model.Options, error) {
	var config benchmarkConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, model.Options{}, err
	}

	if len(config.Instances) == 0 {
		return config, model.Options{}, fmt.Errorf("at least one instance pattern is required")
	}
	if len(config.Encoders) == 0 {
		config.Encoders = model.EncoderNames()
	}
	if len(config.Solvers) == 0 {
		config.Solvers = []string{"gini"}
	}
	if config.Output == "" {
		config.Output = "benchmark_results.csv"
	}

	if invalid, found := lo.Find(config.Encoders, func(encoder string) bool {
		return !slices.Contains(model.EncoderNames(), encoder)
	}); found {
		return config, model.Options{}, fmt.Errorf("%v is not a valid encoder", invalid)
	}
	if invalid, found := lo.Find(config.Solvers, func(solver string) bool {
		return !slices.Contains(sat.SolverNames(), solver)
	}); found {
		return config, model.Options{}, fmt.Errorf("%v is not a valid solver", invalid)
	}

	options := model.Options{MaxSolutions: config.Solutions}
	if config.Timeout != "" {
		timeout, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return config, model.Options{}, fmt.Errorf("malformed timeout: %v", err)
		}
		options.Deadline = timeout
	}
	return config, options, nil
}

func getInstances(patterns []string) []model.BatchInstance {
	instances := make([]model.BatchInstance, 0)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Fatalf("malformed instance pattern \"%v\": %v", pattern, err)
		} else if len(matches) == 0 {
			log.Fatalf("no instance matches \"%v\"", pattern)
		}

		for _, match := range matches {
			problem, err := model.ReadProblemFile(match)
			if err != nil {
				log.Fatalf("cannot parse instance file \"%v\": %v", match, err)
			}
			instances = append(instances, model.BatchInstance{Name: match, Problem: problem})
		}
	}
	return instances
}

func toCsv(path string, results []model.BatchResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Instance", "Encoder", "Solver", "Status", "Solutions", "Duration(ms)"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			result.Instance,
			result.Encoder,
			result.Solver,
			fmt.Sprintf("%v", result.Status),
			fmt.Sprintf("%d", result.Solutions),
			fmt.Sprintf("%d", result.Elapsed.Milliseconds()),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}
