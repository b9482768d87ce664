// Package main provides the matbench CLI: it times square matrix
// multiplications on the GPU when one is available and on the CPU otherwise.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"

	"github.com/born-ml/matbench/internal/bench"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("matbench %s\n", version)
		return
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	err := run(bench.DefaultSelector(log), bench.DefaultConfig(), os.Stdout, log)
	if err != nil {
		log.Error().Err(err).Msg("benchmark failed")
	}
	atexit.Exit(exitCode(err))
}

// run selects a backend, prints the header, times the products and prints
// the results to stdout.
func run(sel *bench.Selector, cfg bench.Config, stdout io.Writer, log zerolog.Logger) error {
	backend, err := sel.Select()
	if err != nil {
		return err
	}
	atexit.Register(backend.Release)

	report := bench.NewReporter(stdout)
	if err := report.Header(backend.Device()); err != nil {
		return err
	}

	res, err := bench.NewRunner(backend, cfg, log).Run()
	if res != nil {
		// Timing is still reported when only verification failed.
		if rerr := report.Result(res); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
