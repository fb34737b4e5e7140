package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/limaJavier/assignment/pkg/mip"
	"github.com/limaJavier/assignment/pkg/model"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	defaultExecutablePath           = "../../bin/assignment"
	defaultDatasetsDirectory        = "../../test/datasets/"
	MB                      float32 = 1024 * 1024
)

type ResultType int

const (
	solved ResultType = iota
	infeasible
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	infeasible: "infeasible",
}

type DatasetMetadata struct {
	Name        string
	Students    int
	Groups      int
	Supervisors int
	Topics      int
}

type BenchmarkResult struct {
	Solver        string
	Dataset       DatasetMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

func main() {
	executablePath := flag.String("exec", defaultExecutablePath, "Path to the assignment executable")
	datasetsDirectory := flag.String("datasets", defaultDatasetsDirectory, "Directory holding one sub-directory with students.json, groups.json and supervisors.json per dataset")
	outFile := flag.String("out", "benchmark_results.csv", "Path to the CSV file where results will be written")
	flag.Parse()

	datasets := getDatasets(*datasetsDirectory)
	solvers := mip.AvailableSolvers()
	results := make([]BenchmarkResult, 0, len(datasets)*len(solvers))

	for _, dataset := range datasets {
		for _, solver := range solvers {
			fmt.Printf("Benchmarking dataset \"%v\" with solver \"%v\"\n", dataset.Name, solver)

			duration, maxMemory, cpuPercentage, result := measure(*executablePath, solver, dataset.Name)

			results = append(results, BenchmarkResult{
				Solver:        solver,
				Dataset:       dataset,
				Duration:      duration,
				Memory:        maxMemory,
				CpuPercentage: cpuPercentage,
				Result:        result,
			})
		}
	}

	file, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := toCsv(file, results); err != nil {
		log.Fatalf("cannot write CSV file: %v", err)
	}
}

func datasetFiles(directory string) (students, groups, supervisors string) {
	return filepath.Join(directory, "students.json"), filepath.Join(directory, "groups.json"), filepath.Join(directory, "supervisors.json")
}

func getDatasets(directory string) []DatasetMetadata {
	entries, err := os.ReadDir(directory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	datasets := make([]DatasetMetadata, 0, len(entries))
	for _, entry := range lo.Filter(entries, func(entry os.DirEntry, _ int) bool { return entry.IsDir() }) {
		name := filepath.Join(directory, entry.Name())
		input, err := model.InputFromJson(datasetFiles(name))
		if err != nil {
			log.Fatalf("cannot parse dataset %v: %v", name, err)
		}

		datasets = append(datasets, DatasetMetadata{
			Name:        name,
			Students:    len(input.Students),
			Groups:      len(input.Groups),
			Supervisors: len(input.Supervisors),
			Topics:      len(input.Topics),
		})
	}

	return datasets
}

func measure(executablePath, solver, dataset string) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	students, groups, supervisors := datasetFiles(dataset)
	cmd := exec.Command("/usr/bin/time", "-v", executablePath,
		"-solver", solver,
		"-students", students,
		"-groups", groups,
		"-supervisors", supervisors,
		"-out", os.DevNull,
		"-lp", "",
		"-log", "",
	)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	if cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		log.Fatalf("an error occurred during the execution of \"assignment\" at dataset \"%v\" using solver \"%v\": %v\n", dataset, solver, stdErr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		result = infeasible
	} else {
		result = solved
	}
	usage, err := parseTimeReport(stdErr.String())
	if err != nil {
		log.Fatalf("cannot read resource usage of dataset \"%v\" with solver \"%v\": %v", dataset, solver, err)
	}
	return usage.Duration, usage.Memory, usage.CpuPercentage, result
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Solver", "Dataset", "Students", "Groups", "Supervisors", "Topics", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		record := []string{
			result.Solver,
			result.Dataset.Name,
			fmt.Sprintf("%d", result.Dataset.Students),
			fmt.Sprintf("%d", result.Dataset.Groups),
			fmt.Sprintf("%d", result.Dataset.Supervisors),
			fmt.Sprintf("%d", result.Dataset.Topics),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

type resourceUsage struct {
	Duration      int64   // Wall clock milliseconds
	Memory        float32 // Maximum resident set size in MB
	CpuPercentage int64
}

// parseTimeReport extracts the resource usage from the "label: value" lines written by /usr/bin/time -v
func parseTimeReport(output string) (resourceUsage, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		if separator := strings.LastIndex(line, ": "); separator >= 0 {
			fields[strings.ToLower(strings.TrimSpace(line[:separator]))] = strings.TrimSpace(line[separator+2:])
		}
	}
	field := func(substr string) (string, error) {
		label, ok := lo.FindKeyBy(fields, func(label string, _ string) bool { return strings.Contains(label, substr) })
		if !ok {
			return "", errors.Errorf("%q not reported", substr)
		}
		return fields[label], nil
	}

	var usage resourceUsage
	clock, err := field("wall clock")
	if err != nil {
		return usage, err
	}
	if usage.Duration, err = elapsedMilliseconds(clock); err != nil {
		return usage, err
	}

	memory, err := field("maximum resident set size")
	if err != nil {
		return usage, err
	}
	kilobytes, err := strconv.ParseFloat(memory, 32)
	if err != nil {
		return usage, errors.Wrap(err, "invalid memory")
	}
	usage.Memory = float32(kilobytes) * 1024 / MB

	percentage, err := field("percent of cpu")
	if err != nil {
		return usage, err
	}
	if usage.CpuPercentage, err = strconv.ParseInt(strings.TrimSuffix(percentage, "%"), 10, 64); err != nil {
		return usage, errors.Wrap(err, "invalid cpu percentage")
	}
	return usage, nil
}

// elapsedMilliseconds reads clocks in h:mm:ss.ss or m:ss.ss form
func elapsedMilliseconds(clock string) (int64, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Errorf("unexpected clock format: %v", clock)
	}

	var minutes int64
	for _, part := range parts[:len(parts)-1] {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "unexpected clock format: %v", clock)
		}
		minutes = minutes*60 + value
	}
	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected clock format: %v", clock)
	}
	return minutes*60*1000 + int64(math.Round(seconds*1000)), nil
}
