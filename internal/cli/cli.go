// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and command routing for skald.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdPages
	CmdExport
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Theme   string // "dark", "light", or "auto"
	DataDir string // overrides the configured data directory
	Quiet   bool

	// Command-specific
	PageName string // page to open or export
	Format   string // export format: "markdown" or "json"

	// Raw args remaining after flag parsing
	Raw []string
}

// Parse reads os.Args and returns the command to run with its
// arguments.
func Parse() (Command, Args) {
	args := Args{Format: "markdown"}
	rest := os.Args[1:]

	// Global flags first, in any position.
	var positional []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--theme" && i+1 < len(rest):
			i++
			args.Theme = rest[i]
		case strings.HasPrefix(arg, "--theme="):
			args.Theme = strings.TrimPrefix(arg, "--theme=")
		case arg == "--data-dir" && i+1 < len(rest):
			i++
			args.DataDir = rest[i]
		case strings.HasPrefix(arg, "--data-dir="):
			args.DataDir = strings.TrimPrefix(arg, "--data-dir=")
		case arg == "--format" && i+1 < len(rest):
			i++
			args.Format = rest[i]
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.TrimPrefix(arg, "--format=")
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-h" || arg == "--help":
			return CmdHelp, args
		case arg == "-v" || arg == "--version":
			return CmdVersion, args
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := positional[0]
	args.Raw = positional[1:]

	switch cmd {
	case "pages":
		return CmdPages, args
	case "export":
		if len(args.Raw) > 0 {
			args.PageName = strings.Join(args.Raw, " ")
		}
		return CmdExport, args
	case "config":
		return CmdConfig, args
	case "doctor":
		return CmdDoctor, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	case "open":
		if len(args.Raw) > 0 {
			args.PageName = strings.Join(args.Raw, " ")
		}
		return CmdTUI, args
	default:
		// Unrecognized word: treat it as a page name to open.
		args.PageName = strings.Join(positional, " ")
		return CmdTUI, args
	}
}

// PrintHelp writes usage information to stdout.
func PrintHelp() {
	fmt.Println(`skald - block-based notes with an AI writing partner

Usage:
  skald                   open today's journal
  skald open <page>       open a page by name (created if missing)
  skald pages             list all pages
  skald export <page>     export a page (--format=markdown|json)
  skald config            show the active configuration
  skald doctor            check the data store and Ollama connection
  skald version           print version information

Flags:
  --theme <dark|light|auto>   color theme
  --data-dir <path>           override the notes data directory
  --format <markdown|json>    export format (default markdown)
  -q, --quiet                 suppress non-essential output
  -h, --help                  show this help
  -v, --version               print version`)
}
