package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"weather-stats/internal/display"
	"weather-stats/internal/models"
)

type InsolationCommand struct {
	Args struct {
		File flags.Filename
		Date string `positional-arg-name:"DATE" description:"ISO-8601 date, e.g. 2019-07-01"`
	} `positional-args:"yes" required:"yes"`

	env *env
}

func (c *InsolationCommand) Execute(args []string) error {
	date, err := models.ParseDate(c.Args.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", c.Args.Date, err)
	}

	ds, err := c.env.load(string(c.Args.File))
	if err != nil {
		return err
	}

	return display.Insolation(c.env.stdout, ds, date)
}
