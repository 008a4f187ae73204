package main

import (
	"github.com/mitchellh/cli"
)

type statusCommand struct {
	ui cli.Ui
}

func (c *statusCommand) Help() string {
	return "Usage: reframectl status [-api-url URL] [-api-token TOKEN]\n\nPrints the API's GET /system/status response."
}

func (c *statusCommand) Synopsis() string {
	return "Show API/worker/storage status"
}

func (c *statusCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("status")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	raw, status, err := client.do("GET", "/system/status", nil)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if status != 200 {
		c.ui.Error(statusError(status).Error())
		printJSON(c.ui, raw)
		return 1
	}
	printJSON(c.ui, raw)
	return 0
}
