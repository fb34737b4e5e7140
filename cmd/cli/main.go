package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/assignment/pkg/logger"
	"github.com/limaJavier/assignment/pkg/mip"
	"github.com/limaJavier/assignment/pkg/model"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	exitSolved             = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
)

func main() {
	// Define arguments
	studentsPtr := flag.String("students", "data/students.json", "Path to the students file")
	groupsPtr := flag.String("groups", "data/groups.json", "Path to the groups file; if empty, no groups are assigned")
	supervisorsPtr := flag.String("supervisors", "data/supervisors.json", "Path to the supervisors file")
	solverPtr := flag.String("solver", mip.DefaultSolver, fmt.Sprintf("Solver backend to use. Allowed values are: %v", strings.Join(mip.AvailableSolvers(), ", ")))
	outPtr := flag.String("out", "assignment_results.txt", "Path to the file where the results will be written; \"-\" writes them into the Standard Output")
	lpPtr := flag.String("lp", "assignment.lp", "Path to the file where the model will be written in LP format; if empty, it is not written")
	logPtr := flag.String("log", "my_log_file", "Path to the solver log file; if empty, no log file is written")
	timeoutPtr := flag.Duration("timeout", 0, "Maximum solving time, where 0 means no limit")
	configPtr := flag.String("config", "", "Path to a config.json file; by default the one next to the executable is used if present")
	verbosePtr := flag.Bool("verbose", false, "Log debug entries and enable the solver's own output")
	flag.Parse()

	config := loadConfig(*configPtr)

	// Flags explicitly set on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "solver":
			config.Solver = *solverPtr
		case "lp":
			config.ModelFile = *lpPtr
		case "log":
			config.LogFile = *logPtr
		case "timeout":
			config.TimeLimit = *timeoutPtr
		case "verbose":
			config.Verbose = *verbosePtr
		}
	})
	config.Solver = strings.ToLower(config.Solver)

	// Validate arguments
	if !slices.Contains(mip.AvailableSolvers(), config.Solver) {
		log.Fatalf("%v is not a valid solver: %v", config.Solver, mip.AvailableSolvers())
	} else if *studentsPtr == "" || *supervisorsPtr == "" {
		log.Fatal("students and supervisors files must be specified")
	} else if config.TimeLimit < 0 {
		log.Fatalf("timeout cannot be negative: %v", config.TimeLimit)
	}

	appLogger, closeLogger, err := logger.New(logger.Options{Verbose: config.Verbose, LogFile: config.LogFile})
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	os.Exit(run(appLogger, closeLogger, config, *studentsPtr, *groupsPtr, *supervisorsPtr, *outPtr))
}

func run(appLogger *zap.Logger, closeLogger func(), config mip.Config, studentsFile, groupsFile, supervisorsFile, outFile string) int {
	defer closeLogger()

	// Extract input
	input, err := model.InputFromJson(studentsFile, groupsFile, supervisorsFile)
	if err != nil {
		appLogger.Error("cannot load input", zap.Error(err))
		return 1
	}
	appLogger.Info("input loaded",
		zap.Int("students", len(input.Students)),
		zap.Int("groups", len(input.Groups)),
		zap.Int("supervisors", len(input.Supervisors)),
		zap.Int("topics", len(input.Topics)),
	)

	// Initialize engines
	options := config.Options()
	options.Logger = appLogger
	solver, err := mip.NewSolver(config.Solver, options)
	if err != nil {
		appLogger.Error("cannot initialize solver", zap.Error(err))
		return 1
	}
	assigner := model.NewILPAssigner(solver, model.WithLogger(appLogger), model.WithModelFile(config.ModelFile))

	// Build assignment
	start := time.Now()
	assignment, variables, constraints, err := assigner.Build(context.Background(), input)
	summary := []zap.Field{zap.Uint64("variables", variables), zap.Uint64("constraints", constraints), zap.Duration("duration", time.Since(start))}

	if err != nil {
		appLogger.Error("an error occurred during assignment construction", append(summary, zap.Error(err))...)
		return 1
	} else if assignment == nil {
		appLogger.Warn("the model is not feasible", summary...)
		fmt.Println("The problem is not feasible")
		return exitInfeasible
	}

	// Verify assignment correctness
	if !assigner.Verify(assignment, input) {
		appLogger.Error("assignment verification failed", summary...)
		return exitVerificationFailed
	}
	appLogger.Info("assignment verified", append(summary, zap.Int64("cost", assignment.Cost))...)

	if err := writeOutput(outFile, input); err != nil {
		appLogger.Error("cannot write results", zap.Error(err))
		return 1
	}
	if err := model.WriteSolutionReport(os.Stdout, assignment, model.FirstChoiceBound(input)); err != nil {
		appLogger.Error("cannot write solution report", zap.Error(err))
		return 1
	}
	return exitSolved
}

// Write the results into outFile, or into the Standard Output when it is "-"
func writeOutput(outFile string, input model.ModelInput) error {
	if outFile == "-" {
		return model.WriteResults(os.Stdout, input)
	}

	file, err := os.Create(outFile)
	if err != nil {
		return errors.Wrap(err, "cannot create results file")
	}
	return writeAndClose(file, input)
}

// A failed close may leave the results file truncated, so its error is reported as well
func writeAndClose(w io.WriteCloser, input model.ModelInput) error {
	if err := model.WriteResults(w, input); err != nil {
		w.Close()
		return err
	}
	return errors.Wrap(w.Close(), "cannot close results file")
}

// loadConfig reads the given config file, or config.json next to the executable when no path is given
func loadConfig(configPath string) mip.Config {
	if configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			log.Fatalf("cannot determine executable path: %v", err)
		}
		execPath = path.Dir(execPath)

		files, err := os.ReadDir(execPath)
		if err != nil {
			log.Fatalf("cannot read executable's directory: %v", err)
		}
		fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })
		if !slices.Contains(fileNames, "config.json") {
			return mip.DefaultConfig()
		}
		configPath = path.Join(execPath, "config.json")
	}

	config, err := mip.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	return config
}
