package cli

import (
	"fmt"

	"youbuildit/pkg/mdx"
	"youbuildit/pkg/services"

	"github.com/spf13/cobra"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and render every challenge, reporting the first failure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := a.library()
			challenges, err := lib.All(cmd.Context())
			if err != nil {
				return err
			}
			r := a.renderer()
			for _, ch := range challenges {
				if _, err := r.Render([]byte(ch.Body), mdx.Context{AssetBase: services.AssetBase(ch.Slug)}); err != nil {
					return fmt.Errorf("%s: %w", ch.Path, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d challenges OK\n", len(challenges))
			return nil
		},
	}
}
