// Package cli holds the shared pieces of the songbook command line: the
// YAML configuration file, the directory layout under ~/.songbook, output
// formatting and terminal styles.
//
//	cfg, err := cli.LoadConfig("")
//	store, err := cfg.OpenStore()
//	lib, err := cfg.OpenLibrary(logger)
//	err = cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
