package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the oas2client CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oas2client",
		Short:         "Generate Ballerina HTTP clients from Swagger/OpenAPI specs",
		Long:          "oas2client turns a Swagger/OpenAPI document into a Ballerina client class with one remote function per selected operation.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagErrorAsUsage)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagErrorAsUsage)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagErrorAsUsage(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
