package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animal-donations/internal/donationportal/data"
	"animal-donations/internal/donationportal/events"
	"animal-donations/internal/donationportal/paymentgateway"
	"animal-donations/internal/donationportal/service"
)

func reconcileCmd() *cobra.Command {
	var animalID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute raised amounts from completed donations",
		Long: `Recompute the raised amount of animals as their baseline plus the sum
of their completed donations, and store the result.

Examples:
  donationctl reconcile
  donationctl reconcile --animal 0b6f2c1e-4f1e-4a55-9b43-1d6f1f3c2a10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBackend(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			donations := service.NewDonations(
				service.DonationsConfig{},
				b.transactionManager,
				b.repository,
				b.repository,
				paymentgateway.New(paymentgateway.Config{}, b.logger),
				events.Noop{},
				b.logger,
			)

			var animals []data.Animal
			if animalID != "" {
				animal, err := donations.RecalculateRaisedAmount(cmd.Context(), animalID)
				if err != nil {
					return err
				}
				animals = []data.Animal{animal}
			} else {
				animals, err = donations.RecalculateAllRaisedAmounts(cmd.Context())
				if err != nil {
					return err
				}
			}

			for _, animal := range animals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", animal.ID, animal.Name, animal.RaisedAmount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&animalID, "animal", "", "only this animal id")

	return cmd
}
