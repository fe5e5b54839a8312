package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"animal-donations/internal/donationportal/service"
)

//go:embed seeddata/animals.yaml
var defaultSeedFile []byte

type seedFile struct {
	Animals []seedAnimal `yaml:"animals"`
}

type seedAnimal struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Image        string  `yaml:"image"`
	MedicalNeeds *string `yaml:"medicalNeeds"`
	UrgencyLevel string  `yaml:"urgencyLevel"`
	TargetAmount string  `yaml:"targetAmount"`
	RaisedAmount string  `yaml:"raisedAmount"`
}

func seedCmd() *cobra.Command {
	var file string
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample animals into the catalog",
		Long: `Load animals from a YAML file into the catalog.

Without --file the built-in list of sample animals is used. The raised
amount of every seeded animal is kept as its baseline, so reconcile
never drops it.

Examples:
  donationctl seed --reset
  donationctl seed --file animals.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content := defaultSeedFile
			if file != "" {
				var err error
				content, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read seed file: %w", err)
				}
			}
			animals, err := parseSeedFile(content)
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := service.NewSeeder(b.transactionManager, b.repository).Seed(cmd.Context(), animals, reset)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d animals\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with animals")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all animals and donations first")

	return cmd
}

func parseSeedFile(content []byte) ([]service.NewAnimal, error) {
	var parsed seedFile
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	res := make([]service.NewAnimal, 0, len(parsed.Animals))
	for i, a := range parsed.Animals {
		target, err := optionalDecimal(a.TargetAmount)
		if err != nil {
			return nil, fmt.Errorf("animal #%d targetAmount: %w", i+1, err)
		}
		raised, err := optionalDecimal(a.RaisedAmount)
		if err != nil {
			return nil, fmt.Errorf("animal #%d raisedAmount: %w", i+1, err)
		}
		res = append(res, service.NewAnimal{
			Name:         a.Name,
			Description:  a.Description,
			Image:        a.Image,
			MedicalNeeds: a.MedicalNeeds,
			UrgencyLevel: a.UrgencyLevel,
			TargetAmount: target,
			RaisedAmount: raised,
		})
	}
	return res, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return &d, nil
}
