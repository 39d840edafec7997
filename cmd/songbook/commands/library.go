package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/codec"
	"github.com/haivivi/songbook/pkg/library"
	"github.com/haivivi/songbook/pkg/score"
	"github.com/haivivi/songbook/pkg/songfile"
)

var libraryPublisher string

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the local song library",
	Long: `The library stores songs by id in a badger database under
~/.songbook/library, indexed by publisher.

Examples:
  songbook library add anthem.json hymns.yaml
  songbook library list --publisher 6f1c...
  songbook library get 0b7e... anthem-copy.json
  songbook library delete 0b7e...`,
}

func openLibrary() (*library.Library, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return cfg.OpenLibrary(logger)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid song id %q: %w", s, err)
	}
	return id, nil
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Add the songs of score files to the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		for _, name := range args {
			songs, err := loadSongs(cmd, name, false)
			if err != nil {
				return err
			}
			for _, song := range songs {
				if err := lib.Put(cmd.Context(), song); err != nil {
					return err
				}
				cli.PrintSuccess(cmd.OutOrStdout(), "added %s %q", song.ID, song.Title)
			}
		}
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the songs in the library",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		var infos []cli.SongInfo
		if libraryPublisher != "" {
			publisher, err := uuid.Parse(libraryPublisher)
			if err != nil {
				return fmt.Errorf("invalid publisher id %q: %w", libraryPublisher, err)
			}
			songs, err := lib.ByPublisher(cmd.Context(), publisher)
			if err != nil {
				return err
			}
			for _, s := range songs {
				infos = append(infos, cli.Summarize(s))
			}
		} else {
			songs, err := lib.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range songs {
				infos = append(infos, cli.Summarize(s))
			}
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No songs.")
			return nil
		}
		return printResult(cmd, infos)
	},
}

var libraryGetCmd = &cobra.Command{
	Use:   "get <id> [output]",
	Short: "Print a song, or save it to a score file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		song, err := lib.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return printResult(cmd, codec.EncodeSong(song))
		}
		fs, _, err := openStore()
		if err != nil {
			return err
		}
		if err := songfile.Save(cmd.Context(), fs, args[1], []*score.Song{song}); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "wrote %q to %s", song.Title, args[1])
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a song from the library",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.Delete(cmd.Context(), id); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "deleted %s", id)
		return nil
	},
}

func init() {
	libraryListCmd.Flags().StringVar(&libraryPublisher, "publisher", "", "only songs of this publisher id")

	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryGetCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
	rootCmd.AddCommand(libraryCmd)
}
