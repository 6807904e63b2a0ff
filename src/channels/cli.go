package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// CLIChannel reads messages from a terminal or a pipe. Interactive sessions
// get a prompt loop; piped input is consumed as a single message. CLI
// messages carry no channel identifiers, so every line starts a fresh thread.
type CLIChannel struct {
	In     io.Reader
	Out    io.Writer
	Sender string
}

// NewCLIChannel builds a CLI channel on stdin/stdout. sender is the identity
// attached to messages, normally the configured owner so the local operator
// is trusted.
func NewCLIChannel(sender string) *CLIChannel {
	return &CLIChannel{In: os.Stdin, Out: os.Stdout, Sender: sender}
}

// Run dispatches stdin messages to handler until EOF, "exit", or context
// cancellation.
func (c *CLIChannel) Run(ctx context.Context, handler Handler) error {
	if f, ok := c.In.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
			return c.runPiped(ctx, handler)
		}
	}
	return c.runInteractive(ctx, handler)
}

func (c *CLIChannel) runInteractive(ctx context.Context, handler Handler) error {
	scanner := bufio.NewScanner(c.In)
	for {
		fmt.Fprint(c.Out, promptStyle.Render("occam> ")+" ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := handler(ctx, c.message(line)); err != nil {
			fmt.Fprintf(c.Out, "error: %v\n", err)
		}
	}
}

func (c *CLIChannel) runPiped(ctx context.Context, handler Handler) error {
	data, err := io.ReadAll(c.In)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}
	return handler(ctx, c.message(text))
}

func (c *CLIChannel) message(text string) Message {
	return Message{
		Channel: CLI,
		Sender:  c.Sender,
		Text:    text,
		Respond: func(_ context.Context, reply string) (string, error) {
			fmt.Fprintf(c.Out, "\n%s\n\n", replyStyle.Render(reply))
			return "", nil
		},
	}
}
