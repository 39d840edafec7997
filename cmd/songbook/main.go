// Package main is the entry point for the songbook CLI.
//
// Usage:
//
//	songbook [flags] <command> [args]
//
// Commands:
//
//	convert    - Convert between JSON, YAML and MusicXML score files
//	validate   - Check score files against the document schema
//	compile    - Compile songs to playback pattern strings
//	midi       - Export a song as a Standard MIDI File
//	info       - Summarize the songs of a file
//	query      - Run a jq expression over a score document
//	schema     - Print the JSON schema of the score document
//	library    - Manage the local song library (add, list, get, delete)
//	config     - Show the configuration
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/songbook/cmd/songbook/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
