package commands

import (
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/codec"
)

var queryCmd = &cobra.Command{
	Use:   "query <file> <expression>",
	Short: "Run a jq expression over a score document",
	Long: `Load the file, encode it as a canonical score document and run a jq
expression over it. Each result is printed in the output format.

MusicXML input is imported first, so the expression always sees the
{"songs": [...]} document.

Examples:
  songbook query anthem.json '.songs[].title'
  songbook query anthem.musicxml '[.songs[0].sheetMusic[].staves[].measures | length]'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := gojq.Parse(args[1])
		if err != nil {
			return fmt.Errorf("parse query: %w", err)
		}
		code, err := gojq.Compile(query)
		if err != nil {
			return fmt.Errorf("compile query: %w", err)
		}
		songs, err := loadSongs(cmd, args[0], false)
		if err != nil {
			return err
		}

		var results []any
		iter := code.RunWithContext(cmd.Context(), codec.Encode(songs))
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				var halt *gojq.HaltError
				if errors.As(err, &halt) && halt.Value() == nil {
					break
				}
				return err
			}
			results = append(results, v)
		}
		if len(results) == 1 {
			return printResult(cmd, results[0])
		}
		return printResult(cmd, results)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
