package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"weather-stats/internal/dataset"
	"weather-stats/internal/source"
)

type ExportCommand struct {
	Format string         `short:"f" long:"format" choice:"csv" choice:"json" default:"csv" description:"output format"`
	Output flags.Filename `short:"o" long:"output" description:"write to a file instead of stdout"`

	Args struct {
		File flags.Filename
	} `positional-args:"yes" required:"yes"`

	env *env
}

func (c *ExportCommand) Execute(args []string) (err error) {
	ds, err := c.env.load(string(c.Args.File))
	if err != nil {
		return err
	}

	out := c.env.stdout
	if c.Output != "" {
		f, cerr := os.Create(string(c.Output))
		if cerr != nil {
			return fmt.Errorf("could not create '%s': %w", c.Output, cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	w := bufio.NewWriter(out)
	if c.Format == "json" {
		err = exportJSON(w, ds)
	} else {
		err = exportCSV(w, ds)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

// exportCSV writes the header and one schema line per valid record, so the
// output is itself a weather file.
func exportCSV(w io.Writer, ds *dataset.Dataset) error {
	if _, err := fmt.Fprintln(w, source.Header); err != nil {
		return err
	}
	for _, r := range ds.All() {
		if _, err := fmt.Fprintln(w, dataset.FormatLine(r)); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(w io.Writer, ds *dataset.Dataset) error {
	enc := json.NewEncoder(w)
	for _, r := range ds.All() {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
