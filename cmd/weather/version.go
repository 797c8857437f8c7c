package main

import "fmt"

type VersionCommand struct {
	env *env
}

func (c *VersionCommand) Execute(args []string) error {
	_, err := fmt.Fprintf(c.env.stdout, "weather version %s\n", version)
	return err
}
