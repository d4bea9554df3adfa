// rangemap.go range command code
package rangemap

import (
	"github.com/spf13/cobra"
	"github.com/tkoskela/occutensor/internal/conf"
)

// Command creates the rangemap command and its subcommands
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rangemap",
		Short: "Inspect per-species geographic range inference",
	}

	cmd.AddCommand(PrintCommand(settings))

	return cmd
}
