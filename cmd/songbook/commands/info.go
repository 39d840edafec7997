package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize the songs of a file",
	Long: `Print the title, composer, instruments, size and play time of every song
in the file. Without --format the summary is drawn as a card.

Examples:
  songbook info anthem.json
  songbook info hymns.yaml --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		songs, err := loadSongs(cmd, args[0], false)
		if err != nil {
			return err
		}
		infos := make([]cli.SongInfo, len(songs))
		for i, song := range songs {
			infos[i] = cli.Summarize(song)
			if n := infos[i].Irregular; n > 0 {
				cli.PrintWarning(cmd.ErrOrStderr(), "%s: %d measure(s) do not fill their time signature", song.Title, n)
			}
		}
		if formatOutput != "" {
			return printResult(cmd, infos)
		}
		styles := cli.NewStyles(cli.DefaultTheme)
		for _, info := range infos {
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderCard(info))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
