package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexboden/occam-claw/src/channels"
)

// ServeCmd runs the assistant on every enabled channel until interrupted.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	errs := make(chan error, 2)
	running := 0

	if a.cfg.Signal.Enabled {
		sig := channels.NewSignalChannel(a.cfg.Signal.Number, a.cfg.Signal.APIURL, a.logger)
		running++
		go func() {
			errs <- sig.Listen(ctx, a.orch.Handle)
		}()
	}

	if a.cfg.CLI.Enabled {
		cliChan := channels.NewCLIChannel(a.cfg.Owner)
		running++
		go func() {
			errs <- cliChan.Run(ctx, a.orch.Handle)
		}()
	}

	if running == 0 {
		return fmt.Errorf("no channels enabled; enable at least one in %s", cli.Config)
	}

	// First channel to stop takes the process down; the rest are cancelled.
	err = <-errs
	stop()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// PromptCmd runs one message through the orchestrator and prints the reply.
type PromptCmd struct {
	Text string `arg:"" help:"The message to send."`
}

func (c *PromptCmd) Run(cli *CLI) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	msg := channels.Message{
		Channel: channels.CLI,
		Sender:  a.cfg.Owner,
		Text:    c.Text,
		Respond: func(_ context.Context, reply string) (string, error) {
			fmt.Println(reply)
			return "", nil
		},
	}
	return a.orch.Handle(ctx, msg)
}

// ThreadsCmd lists stored conversation threads.
type ThreadsCmd struct{}

func (c *ThreadsCmd) Run(cli *CLI) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	threads, err := a.store.ListThreads(ctx)
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		fmt.Println("no threads stored")
		return nil
	}
	for _, t := range threads {
		fmt.Printf("%s  %3d turns  last %s\n", t.ThreadID, t.TurnCount, t.LastAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
