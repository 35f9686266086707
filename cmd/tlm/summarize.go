package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/tlmlabs/tlm/internal/tlmutil"
	"github.com/tlmlabs/tlm/summary"
)

type summarizeConfig struct {
	*rootConfig

	asCSV bool
}

func (cfg *summarizeConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:  "csv",
		Value:     ffval.NewValue(&cfg.asCSV),
		Usage:     "emit CSV instead of a table",
		NoDefault: true,
	})
}

func (cfg *summarizeConfig) Exec(ctx context.Context, args []string) error {
	cfg.setup()

	if len(args) != 1 {
		return fmt.Errorf("expected 1 argument, got %d", len(args))
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	s, err := summary.Read(f)
	if err != nil {
		return fmt.Errorf("parse trace file: %w", err)
	}

	cfg.debug.Printf("%d records, %.0f ticks per second", len(s.Records), s.TicksPerSecond)

	intervals := s.ByInterval()

	header := []string{"Interval", "Thread", "Description", "Start", "Duration", "Annotations"}
	var rows [][]string
	for _, is := range intervals {
		duration := "-"
		if is.Complete {
			duration = tlmutil.HumanizeDuration(is.Duration)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", is.ID),
			fmt.Sprintf("%x", is.ThreadID),
			is.Description,
			tlmutil.HumanizeDuration(is.Start),
			duration,
			strings.Join(is.Annotations, "; "),
		})
	}

	if cfg.asCSV {
		cw := csv.NewWriter(cfg.stdout)
		cw.Write(header)
		for _, row := range rows {
			cw.Write(row)
		}
		cw.Flush()
		return cw.Error()
	}

	table := tablewriter.NewWriter(cfg.stdout)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.SetFooter([]string{"Total", "", "", "", "", fmt.Sprintf("%d intervals", len(intervals))})
	table.Render()
	return nil
}
