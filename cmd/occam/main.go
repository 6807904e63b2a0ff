package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the top-level command structure.
type CLI struct {
	Config   string `default:"config.toml" help:"Path to the config file."`
	LogLevel string `default:"info" help:"Log level (debug, info, warn, error)."`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the assistant on the configured channels (default)."`
	Prompt  PromptCmd  `cmd:"" help:"Run a single message through the assistant and print the reply."`
	Threads ThreadsCmd `cmd:"" help:"List stored conversation threads."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("occam"),
		kong.Description("Personal assistant reachable over Signal, with calendar, search, and time tools."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
