package cli

import (
	"fmt"

	"youbuildit/pkg/services"

	"github.com/spf13/cobra"
)

func (a *app) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull the latest content from its git remote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := services.SyncContent(cmd.Context(), a.library(), a.cfg.GitRemote, a.cfg.GitBranch, a.cfg.GitToken)
			fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}
