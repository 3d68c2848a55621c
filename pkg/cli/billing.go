package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) billingCommand() *cobra.Command {
	billing := &cobra.Command{
		Use:   "billing",
		Short: "Maintain member billing state",
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear Stripe data and move every member to the FREE tier",
		Long: `Clear the Stripe customer and subscription ids and the subscription status of
every member, and set their tier to FREE. Members already in that state are left
untouched, so running it twice clears nothing the second time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.requireStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				n, err := db.CountBillingToReset(ctx)
				if err != nil {
					return err
				}
				log.Info().Int64("users", n).Msg("billing reset dry run")
				fmt.Fprintf(cmd.OutOrStdout(), "%d users would be reset\n", n)
				return nil
			}

			n, err := db.ResetBilling(ctx)
			if err != nil {
				return err
			}
			log.Info().Int64("users", n).Msg("billing reset")
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared billing data for %d users\n", n)
			return nil
		},
	}
	reset.Flags().Bool("dry-run", false, "only count the members that would be reset")

	billing.AddCommand(reset)
	return billing
}
