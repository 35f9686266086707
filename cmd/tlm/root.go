package main

import (
	"io"
	"log"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
)

type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	verbose bool
	debug   *log.Logger
}

func (cfg *rootConfig) registerBaseFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName: 'v',
		LongName:  "verbose",
		Value:     ffval.NewValue(&cfg.verbose),
		Usage:     "log progress details to stderr",
		NoDefault: true,
	})
}

func (cfg *rootConfig) setup() {
	dst := io.Discard
	if cfg.verbose {
		dst = cfg.stderr
	}
	cfg.debug = log.New(dst, "", 0)
}
