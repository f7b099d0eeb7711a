// cmd/sweeprig/main.go
//
// This is the entry point for the sweeprig CLI.
//
// Flow:
// 1. Load and validate the YAML run spec
// 2. Resolve the named pipeline from the built-in registry
// 3. Run the sweep — quietly, or under the live progress view when
//    the spec sets verbose
// 4. Print the summary (and the results, when no checkpoint file
//    captures them)

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/sweeprig/internal/checkpoint"
	"github.com/kingrea/sweeprig/internal/config"
	"github.com/kingrea/sweeprig/internal/engine"
	"github.com/kingrea/sweeprig/internal/logging"
	"github.com/kingrea/sweeprig/internal/pipeline"
	"github.com/kingrea/sweeprig/internal/progress"
	"github.com/kingrea/sweeprig/internal/schedule"
	"github.com/kingrea/sweeprig/internal/sweep"
	"github.com/kingrea/sweeprig/internal/tui"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sweeprig <runspec.yaml>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	spec, err := config.Load(flag.Arg(0))
	if err != nil {
		die("%v", err)
	}

	registry := pipeline.Builtin()
	if spec.Pipeline == "" {
		die("run spec names no pipeline; available: %v", registry.Names())
	}
	pl, err := registry.Resolve(spec.Pipeline)
	if err != nil {
		die("%v", err)
	}

	var logger *logging.Logger
	if spec.LogDir != "" {
		logger, err = logging.New(spec.LogDir)
		if err != nil {
			die("%v", err)
		}
		defer logger.Close()
	}

	opts := engine.Options{
		Trials:          schedule.TrialSpec{NTrials: spec.NTrials, Specific: spec.SpecificTrials},
		Cores:           spec.Cores,
		ShuffleGroups:   spec.ShuffleGroups,
		ChunkCount:      spec.ChunkCount,
		RequiredModules: spec.RequiredModules,
		Shared:          spec.SharedState,
		Seed:            spec.Seed,
		Resume:          spec.Resume,
	}
	engOpts := []engine.Option{
		engine.WithModuleResolver(registry),
		engine.WithLogger(logger),
	}
	if spec.CheckpointPath != "" {
		engOpts = append(engOpts, engine.WithStore(checkpoint.NewRepository(spec.CheckpointPath)))
	}

	var acc sweep.Accumulator
	var report engine.Report
	if spec.Verbose {
		acc, report, err = runWithView(spec, pl, opts, engOpts)
	} else {
		eng, newErr := engine.New(spec.Settings, pl, opts, engOpts...)
		if newErr != nil {
			die("%v", newErr)
		}
		acc, report, err = eng.Run(context.Background())
	}
	if err != nil {
		die("%v", err)
	}

	fmt.Printf("run %s: %d tasks in %d chunks on %d core(s)\n",
		report.RunID, report.Total, report.Chunks, report.Cores)
	fmt.Printf("  %d succeeded, %d failed, %d resumed, %s elapsed\n",
		report.Succeeded, report.Failed, report.Skipped, report.Elapsed)
	if spec.CheckpointPath != "" {
		fmt.Printf("  results: %s\n", spec.CheckpointPath)
		return
	}

	encoded, err := json.MarshalIndent(acc, "", "  ")
	if err != nil {
		die("encode results: %v", err)
	}
	fmt.Println(string(encoded))
}

// runWithView runs the engine in a goroutine behind the bubbletea
// progress view. Quitting the view cancels the run at the next safe
// point; already-checkpointed chunks survive.
func runWithView(spec *config.RunSpec, pl sweep.Pipeline, opts engine.Options, engOpts []engine.Option) (sweep.Accumulator, engine.Report, error) {
	trials, err := schedule.TrialSpec{NTrials: spec.NTrials, Specific: spec.SpecificTrials}.Trials()
	if err != nil {
		return nil, engine.Report{}, err
	}
	total := int64(len(spec.Settings) * len(trials))

	var prog *tea.Program
	engOpts = append(engOpts,
		engine.WithProgressSink(func(u progress.Update) {
			prog.Send(tui.ProgressMsg(u))
		}),
		engine.WithChunkNotify(func(index, count int) {
			prog.Send(tui.ChunkMsg{Index: index, Count: count})
		}),
	)
	eng, err := engine.New(spec.Settings, pl, opts, engOpts...)
	if err != nil {
		return nil, engine.Report{}, err
	}
	prog = tea.NewProgram(tui.NewModel(eng.RunID(), total))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		acc    sweep.Accumulator
		report engine.Report
		err    error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		acc, report, err := eng.Run(ctx)
		if err != nil {
			prog.Send(tui.ErrMsg{Err: err})
		} else {
			prog.Send(tui.DoneMsg{Report: report})
		}
		resultCh <- outcome{acc: acc, report: report, err: err}
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-resultCh
		return nil, engine.Report{}, fmt.Errorf("progress view: %w", err)
	}
	// The view exits on DoneMsg/ErrMsg, or early when the user quits;
	// cancelling is a no-op in the first two cases.
	cancel()
	res := <-resultCh
	return res.acc, res.report, res.err
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sweeprig: "+format+"\n", args...)
	os.Exit(1)
}
