// Command subpub-log views and analyzes relay capture files.
//
// Capture files are written by subpub-server when started with
// --capture (or capture.file in its config file).
//
// Usage:
//
//	subpub-log <command> [flags] <file.splog>
//
// Examples:
//
//	# View MIDI events only
//	subpub-log view --layer midi relay.splog
//
//	# Everything published on one channel
//	subpub-log view --channel lights relay.splog
//
//	# Export to CSV
//	subpub-log export --format csv -o relay.csv relay.splog
//
//	# Keep one peer's traffic
//	subpub-log filter --remote 10.0.0.7:41000 -o peer.splog relay.splog
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/cmd/subpub-log/commands"
)

const usage = `subpub-log - relay capture analyzer

Usage:
  subpub-log <command> [flags] <file.splog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSON lines or CSV
  filter   Filter capture file and write to a new file
  stats    Show statistics about the capture file

Use "subpub-log <command> --help" for more information about a command.
`

var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	case "view", "export", "filter", "stats":
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts commands.FilterOptions
	fs.StringVar(&opts.Layer, "layer", "", "filter by layer (datagram, protocol, midi, discovery)")
	fs.StringVar(&opts.Direction, "direction", "", "filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "filter by category (message, state, error)")
	fs.StringVar(&opts.Channel, "channel", "", "filter by channel name")
	fs.StringVar(&opts.Remote, "remote", "", "filter by peer address")
	fs.StringVar(&opts.RelayID, "relay-id", "", "filter by relay instance ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "filter by end time (RFC3339)")

	var format, output string
	switch cmd {
	case "export":
		fs.StringVar(&format, "format", "jsonl", "output format (jsonl, csv)")
		fs.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	case "filter":
		fs.StringVarP(&output, "output", "o", "", "output capture file (required)")
	}

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  subpub-log %s [flags] <file.splog>\n\nFlags:\n", cmd)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: capture file path required")
		fs.Usage()
		return errUsage
	}
	path := fs.Arg(0)

	switch cmd {
	case "view":
		return commands.RunView(path, opts, stdout)
	case "export":
		return commands.RunExport(path, format, output, opts, stdout)
	case "filter":
		return commands.RunFilter(path, output, opts, stdout)
	default:
		return commands.RunStats(path, opts, stdout)
	}
}
