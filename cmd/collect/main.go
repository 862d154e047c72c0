// Command collect assembles a single amount from a set of cassettes given on
// the command line and prints the combination as YAML.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cashmachine/internal/banknote"
	"github.com/eugenenazirov/cashmachine/internal/config"
	"github.com/eugenenazirov/cashmachine/internal/storage"
)

const exitUnsatisfiable = 2

var errUnsatisfiable = errors.New("amount cannot be dispensed")

type options struct {
	amount    int
	banknotes string
	strategy  string
}

type report struct {
	Amount     int                    `yaml:"amount"`
	Strategy   string                 `yaml:"strategy"`
	TotalNotes int                    `yaml:"total_notes"`
	Banknotes  []banknote.BanknoteSet `yaml:"banknotes"`
}

func main() {
	app := kingpin.New("collect", "Assemble an amount from the fewest available banknotes")
	var opts options
	app.Arg("amount", "Amount to dispense").Required().IntVar(&opts.amount)
	app.Flag("banknotes", "Cassettes as nominal:count pairs, defaults to the reference cassettes").Short('b').StringVar(&opts.banknotes)
	app.Flag("strategy", "Search strategy (optimal, greedy)").Short('s').Default("optimal").StringVar(&opts.strategy)

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUnsatisfiable) {
			os.Exit(exitUnsatisfiable)
		}
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	strategy, err := banknote.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	sets := storage.DefaultBanknotes()
	if opts.banknotes != "" {
		sets, err = config.ParseBanknotes(opts.banknotes)
		if err != nil {
			return fmt.Errorf("parse banknotes: %w", err)
		}
		sets, err = storage.NormalizeBanknotes(sets)
		if err != nil {
			return fmt.Errorf("parse banknotes: %w", err)
		}
	}

	collector, err := banknote.NewAmountCollector(sets, banknote.WithStrategy(strategy))
	if err != nil {
		return err
	}

	result, ok := collector.CollectAmount(opts.amount)
	if !ok {
		return fmt.Errorf("%w: %d", errUnsatisfiable, opts.amount)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	err = enc.Encode(report{
		Amount:     opts.amount,
		Strategy:   strategy.String(),
		TotalNotes: banknote.TotalNotes(result),
		Banknotes:  result,
	})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}
