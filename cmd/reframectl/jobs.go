package main

import (
	"fmt"

	"github.com/mitchellh/cli"
)

type jobsListCommand struct {
	ui cli.Ui
}

func (c *jobsListCommand) Help() string {
	return "Usage: reframectl jobs list [-status STATUS] [-api-url URL] [-api-token TOKEN]\n\nLists jobs, optionally filtered by status (queued, running, completed, failed, cancelled)."
}

func (c *jobsListCommand) Synopsis() string { return "List jobs" }

func (c *jobsListCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("jobs list")
	status := fs.String("status", "", "Filter by job status")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	path := "/jobs"
	if *status != "" {
		path += "?status=" + *status
	}
	raw, code, err := client.do("GET", path, nil)
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

type jobsGetCommand struct {
	ui cli.Ui
}

func (c *jobsGetCommand) Help() string {
	return "Usage: reframectl jobs get <job-id> [-api-url URL] [-api-token TOKEN]"
}

func (c *jobsGetCommand) Synopsis() string { return "Show a single job" }

func (c *jobsGetCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("jobs get")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		c.ui.Error("expected exactly one job id argument")
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	raw, code, err := client.do("GET", "/jobs/"+fs.Arg(0), nil)
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

type jobsCancelCommand struct {
	ui cli.Ui
}

func (c *jobsCancelCommand) Help() string {
	return "Usage: reframectl jobs cancel <job-id> [-api-url URL] [-api-token TOKEN]"
}

func (c *jobsCancelCommand) Synopsis() string { return "Cancel a running or queued job" }

func (c *jobsCancelCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("jobs cancel")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		c.ui.Error("expected exactly one job id argument")
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	raw, code, err := client.do("POST", "/jobs/"+fs.Arg(0)+"/cancel", nil)
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

type jobsDeleteCommand struct {
	ui cli.Ui
}

func (c *jobsDeleteCommand) Help() string {
	return "Usage: reframectl jobs delete <job-id> [-delete-assets] [-api-url URL] [-api-token TOKEN]\n\nDeletes a terminal job. With -delete-assets, also cascades to its output/clip assets when unreferenced elsewhere."
}

func (c *jobsDeleteCommand) Synopsis() string { return "Delete a terminal job" }

func (c *jobsDeleteCommand) Run(args []string) int {
	fs, apiURL, token := newFlagSet("jobs delete")
	deleteAssets := fs.Bool("delete-assets", false, "Cascade-delete the job's output/clip assets if unreferenced")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		c.ui.Error("expected exactly one job id argument")
		return 1
	}
	client := &apiClient{baseURL: *apiURL, token: *token}

	path := "/jobs/" + fs.Arg(0)
	if *deleteAssets {
		path += "?delete_assets=true"
	}
	raw, code, err := client.do("DELETE", path, nil)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if code != 204 {
		c.ui.Error(statusError(code).Error())
		printJSON(c.ui, raw)
		return 1
	}
	c.ui.Output(fmt.Sprintf("job %s deleted", fs.Arg(0)))
	return 0
}
