package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/codec"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the score document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Output(codec.Schema(), cli.OutputOptions{
			Format: cli.FormatJSON,
			File:   outputFile,
			Writer: cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
