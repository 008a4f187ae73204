package main

import (
	"fmt"

	"github.com/mitchellh/cli"
)

type assetsListCommand struct {
	ui cli.Ui
}

func (c *assetsListCommand) Help() string {
	return "Usage: reframectl assets list [-api-url URL] [-api-token TOKEN]"
}

func (c *assetsListCommand) Synopsis() string { return "List assets" }

func (c *assetsListCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("assets list")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	raw, code, err := client.do("GET", "/assets", nil)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if code != 200 {
		c.ui.Error(statusError(code).Error())
		printJSON(c.ui, raw)
		return 1
	}
	printJSON(c.ui, raw)
	return 0
}

type assetsDeleteCommand struct {
	ui cli.Ui
}

func (c *assetsDeleteCommand) Help() string {
	return "Usage: reframectl assets delete <asset-id> [-api-url URL] [-api-token TOKEN]\n\nFails with a conflict if the asset is still referenced by a job."
}

func (c *assetsDeleteCommand) Synopsis() string { return "Delete an unreferenced asset" }

func (c *assetsDeleteCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("assets delete")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		c.ui.Error("expected exactly one asset id argument")
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	raw, code, err := client.do("DELETE", "/assets/"+fs.Arg(0), nil)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if code != 204 {
		c.ui.Error(statusError(code).Error())
		printJSON(c.ui, raw)
		return 1
	}
	c.ui.Output(fmt.Sprintf("asset %s deleted", fs.Arg(0)))
	return 0
}
