// Package cli implements the botway command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd creates the root botway command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "botway",
		Short: "Activity processing engine for conversational bots",
		Long: `botway hosts a conversational bot: it receives platform activities
over HTTP, routes them through registered handlers, manages the sign-in
handshake and streams replies back to the conversation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "botway.yaml", "path to config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	return root
}
