package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExamplesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the canned example prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			for i, example := range cfg.Examples {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, example)
			}
			return nil
		},
	}
}
