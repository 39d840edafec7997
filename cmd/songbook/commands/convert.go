package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/songfile"
	"github.com/haivivi/songbook/pkg/storage"
)

var convertCmd = &cobra.Command{
	Use:     "convert <input> <output>",
	Aliases: []string{"import"},
	Short:   "Convert a score file to JSON or YAML",
	Long: `Read every song of the input file and write them to the output file.

The input may be JSON, YAML, MusicXML or compressed MusicXML (.mxl). The
output must be .json or .yaml.

Examples:
  songbook convert anthem.musicxml anthem.json
  songbook import anthem.mxl anthem.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		songs, err := loadSongs(cmd, args[0], false)
		if err != nil {
			return err
		}
		format, err := songfile.DetectFormat(args[1])
		if err != nil {
			return err
		}
		data, err := songfile.Marshal(songs, format)
		if err != nil {
			return err
		}
		fs, _, err := openStore()
		if err != nil {
			return err
		}
		if err := storage.WriteAll(cmd.Context(), fs, args[1], data); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "wrote %d song(s) to %s (%s)", len(songs), args[1], cli.FormatBytes(int64(len(data))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
