package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/pattern"
)

var (
	compileSong   int
	compileTokens bool
)

type compiled struct {
	Title   string `json:"title" yaml:"title"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile songs to playback pattern strings",
	Long: `Compile each song of the file to a playback pattern: one voice per
staff, "V<n> R" followed by the staff's tokens.

By default the patterns are printed one per line. With --format json or
yaml each song's title and pattern are printed as a document.

Examples:
  songbook compile anthem.json
  songbook compile anthem.json --song 0 --tokens`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		songs, err := loadSongs(cmd, args[0], false)
		if err != nil {
			return err
		}
		songs, err = selectSongs(songs, compileSong)
		if err != nil {
			return err
		}

		if compileTokens {
			var lines []string
			for _, song := range songs {
				for _, st := range song.Staves() {
					tokens, err := pattern.Tokens(st)
					if err != nil {
						return err
					}
					lines = append(lines, strings.Join(tokens, "\n"))
				}
			}
			return printText(cmd, lines)
		}

		results := make([]compiled, 0, len(songs))
		for _, song := range songs {
			p, err := pattern.Compile(song)
			if err != nil {
				return err
			}
			results = append(results, compiled{Title: song.Title, Pattern: p})
		}
		if formatOutput == "" {
			lines := make([]string, len(results))
			for i, r := range results {
				lines[i] = r.Pattern
			}
			return printText(cmd, lines)
		}
		return printResult(cmd, results)
	},
}

func printText(cmd *cobra.Command, lines []string) error {
	text := strings.Join(lines, "\n")
	if text != "" {
		text += "\n"
	}
	return cli.Output(text, cli.OutputOptions{Format: cli.FormatRaw, File: outputFile, Writer: cmd.OutOrStdout()})
}

func init() {
	compileCmd.Flags().IntVar(&compileSong, "song", -1, "compile only the song at this index")
	compileCmd.Flags().BoolVar(&compileTokens, "tokens", false, "print one token per line instead of patterns")
	rootCmd.AddCommand(compileCmd)
}
