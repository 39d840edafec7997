package commands

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/midifile"
	"github.com/haivivi/songbook/pkg/storage"
)

var (
	midiSong     int
	midiTicks    uint16
	midiVelocity uint8
)

var midiCmd = &cobra.Command{
	Use:   "midi <file> <output.mid>",
	Short: "Export a song as a Standard MIDI File",
	Long: `Render one song of the file as a format 1 Standard MIDI File: a tempo
track followed by one track per staff.

Examples:
  songbook midi anthem.json anthem.mid
  songbook midi hymns.yaml hymn3.mid --song 3 --ticks 480`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		songs, err := loadSongs(cmd, args[0], false)
		if err != nil {
			return err
		}
		selected, err := selectSongs(songs, midiSong)
		if err != nil {
			return err
		}
		fs, _, err := openStore()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		err = midifile.Write(&buf, selected[0], &midifile.Options{
			TicksPerQuarter: midiTicks,
			Velocity:        midiVelocity,
			Logger:          logger,
		})
		if err != nil {
			return err
		}
		if err := storage.WriteAll(cmd.Context(), fs, args[1], buf.Bytes()); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "wrote %q to %s (%s)", selected[0].Title, args[1], cli.FormatBytes(int64(buf.Len())))
		return nil
	},
}

func init() {
	midiCmd.Flags().IntVar(&midiSong, "song", 0, "index of the song to export")
	midiCmd.Flags().Uint16Var(&midiTicks, "ticks", midifile.DefaultTicksPerQuarter, "ticks per quarter note")
	midiCmd.Flags().Uint8Var(&midiVelocity, "velocity", midifile.DefaultVelocity, "note-on velocity")
	rootCmd.AddCommand(midiCmd)
}
