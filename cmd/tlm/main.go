// tlm is a CLI for producing and inspecting tlm trace files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	var (
		ctx    = context.Background()
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	rootConfig := &rootConfig{
		stdout: stdout,
		stderr: stderr,
	}

	rootFlags := ff.NewFlagSet("tlm")
	rootConfig.registerBaseFlags(rootFlags)

	rootCommand := &ff.Command{
		Name:      "tlm",
		ShortHelp: "record and inspect cycle-counter trace files",
		Flags:     rootFlags,
	}

	// Config for `tlm demo`.
	demoConfig := &demoConfig{rootConfig: rootConfig}
	demoFlags := ff.NewFlagSet("demo").SetParent(rootFlags)
	demoConfig.register(demoFlags)
	demoCommand := &ff.Command{
		Name:      "demo",
		ShortHelp: "record a synthetic concurrent workload to a trace file",
		LongHelp:  "Run a number of workers that open, annotate, and close intervals, and write the resulting trace to a file.",
		Flags:     demoFlags,
		Exec:      demoConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, demoCommand)

	// Config for `tlm summarize`.
	summarizeConfig := &summarizeConfig{rootConfig: rootConfig}
	summarizeFlags := ff.NewFlagSet("summarize").SetParent(rootFlags)
	summarizeConfig.register(summarizeFlags)
	summarizeCommand := &ff.Command{
		Name:      "summarize",
		ShortHelp: "summarize the intervals of a trace file",
		LongHelp:  "Pair interval start and stop records by identifier and print one row per interval.",
		Flags:     summarizeFlags,
		Exec:      summarizeConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, summarizeCommand)

	// Print help when appropriate.
	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
		}
		if errHelp {
			err = nil
		}
	}()

	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("TLM")); err != nil {
		return err
	}

	// Run errors shouldn't show help by default.
	showHelp = false

	return rootCommand.Run(ctx)
}
