package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/botway/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("botway %s (%s)\n", version.Version, version.Commit)
		},
	}
}
