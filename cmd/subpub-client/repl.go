package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/client"
)

// relayClient is the part of *client.Client the prompt drives.
type relayClient interface {
	Subscribe(channel string) error
	Unsubscribe(channel string) error
	Publish(channel, payload string) error
}

type repl struct {
	c   *client.Client
	rl  *readline.Instance
	out io.Writer
}

func newREPL(c *client.Client) (*repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "subpub> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &repl{c: c, rl: rl, out: rl.Stdout()}, nil
}

// Run reads commands until quit, EOF, or ctx is done. Forwarded payloads
// are printed as they arrive.
func (r *repl) Run(ctx context.Context) error {
	defer r.rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.receive(ctx)

	fmt.Fprintf(r.out, "Connected to %s as %s\n", r.c.Server(), r.c.LocalAddr())
	printHelp(r.out)

	for {
		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := execute(r.c, r.out, line); quit {
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}
	}
}

func (r *repl) receive(ctx context.Context) {
	for {
		data, err := r.c.Receive(ctx)
		if err != nil {
			return
		}
		fmt.Fprintf(r.out, "<< %s\n", data)
	}
}

// execute runs one prompt line and reports whether the user asked to quit.
func execute(c relayClient, out io.Writer, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		printHelp(out)

	case "sub", "s":
		if rest == "" {
			fmt.Fprintln(out, "Usage: sub <channel>")
			return false
		}
		report(out, c.Subscribe(rest), "subscribed to "+rest)

	case "unsub", "u":
		if rest == "" {
			fmt.Fprintln(out, "Usage: unsub <channel>")
			return false
		}
		report(out, c.Unsubscribe(rest), "unsubscribed from "+rest)

	case "pub", "p":
		channel, payload, ok := strings.Cut(rest, " ")
		if !ok || channel == "" {
			fmt.Fprintln(out, "Usage: pub <channel> <payload>")
			return false
		}
		report(out, c.Publish(channel, payload), "published to "+channel)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func report(out io.Writer, err error, ok string) {
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, ok)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Commands:
  sub <channel>            - Subscribe to a channel
  unsub <channel>          - Unsubscribe from a channel
  pub <channel> <payload>  - Publish; payload is the rest of the line
  help                     - Show this help
  quit                     - Exit

  Payloads for mapped topics may be JSON overrides, e.g.
    pub drums {"note": 38, "vel": 100}`)
}
