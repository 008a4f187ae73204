// Command reframectl is an admin CLI for a running reframe-media
// deployment: it talks to the C4 job API over HTTP to inspect and manage
// jobs and assets, the way an operator would otherwise use curl against
// the same routes api/server.go exposes.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("reframectl", version())
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"status": func() (cli.Command, error) {
			return &statusCommand{ui: ui}, nil
		},
		"jobs list": func() (cli.Command, error) {
			return &jobsListCommand{ui: ui}, nil
		},
		"jobs get": func() (cli.Command, error) {
			return &jobsGetCommand{ui: ui}, nil
		},
		"jobs cancel": func() (cli.Command, error) {
			return &jobsCancelCommand{ui: ui}, nil
		},
		"jobs delete": func() (cli.Command, error) {
			return &jobsDeleteCommand{ui: ui}, nil
		},
		"assets list": func() (cli.Command, error) {
			return &assetsListCommand{ui: ui}, nil
		},
		"assets delete": func() (cli.Command, error) {
			return &assetsDeleteCommand{ui: ui}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitStatus
}

func version() string {
	if v := os.Getenv("REFRAME_VERSION"); v != "" {
		return v
	}
	return "dev"
}
