package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check score files against the document schema",
	Long: `Validate JSON and YAML files against the score document schema and
decode them. MusicXML files are imported.

Examples:
  songbook validate anthem.json hymns.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			songs, err := loadSongs(cmd, name, true)
			if err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), "%s: %d song(s)", name, len(songs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
