package service

import (
	"context"
	"fmt"

	"animal-donations/internal/donationportal/data"
)

type SeedRepository interface {
	AnimalRepository
	DeleteAll(ctx context.Context) error
}

// Seeder loads a fixed list of animals, optionally wiping existing data first.
type Seeder struct {
	transactionManager TransactionManager
	repository         SeedRepository
}

func NewSeeder(transactionManager TransactionManager, repository SeedRepository) *Seeder {
	return &Seeder{
		transactionManager: transactionManager,
		repository:         repository,
	}
}

// Seed inserts every animal in one transaction. Nothing is written when any
// of them fails validation.
func (s *Seeder) Seed(ctx context.Context, animals []NewAnimal, reset bool) (int, error) {
	prepared := make([]data.Animal, 0, len(animals))
	for i, in := range animals {
		animal, err := buildAnimal(in)
		if err != nil {
			return 0, fmt.Errorf("animal #%d (%s): %w", i+1, in.Name, err)
		}
		prepared = append(prepared, animal)
	}

	err := s.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		if reset {
			if err := s.repository.DeleteAll(ctx); err != nil {
				return fmt.Errorf("%w: error deleting existing data: %w", ErrStore, err)
			}
		}
		for i := range prepared {
			if err := s.repository.InsertAnimal(ctx, &prepared[i]); err != nil {
				return fmt.Errorf("%w: error inserting animal %s: %w", ErrStore, prepared[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(prepared), nil
}
