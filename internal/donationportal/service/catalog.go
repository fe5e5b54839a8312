package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"animal-donations/internal/donationportal/data"
)

type NewAnimal struct {
	Name         string
	Description  string
	Image        string
	MedicalNeeds *string
	UrgencyLevel string
	TargetAmount *decimal.Decimal
	RaisedAmount *decimal.Decimal
}

type Catalog struct {
	repository AnimalRepository
}

func NewCatalog(repository AnimalRepository) *Catalog {
	return &Catalog{
		repository: repository,
	}
}

// ListAnimals returns the newest animals first.
func (c *Catalog) ListAnimals(ctx context.Context) ([]data.Animal, error) {
	animals, err := c.repository.GetAllAnimals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error getting animals: %w", ErrStore, err)
	}
	return animals, nil
}

func (c *Catalog) GetAnimal(ctx context.Context, id string) (data.Animal, error) {
	animal, err := c.repository.GetAnimal(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return data.Animal{}, fmt.Errorf("animal %s: %w", id, ErrNotFound)
		}
		return data.Animal{}, fmt.Errorf("%w: error getting animal: %w", ErrStore, err)
	}
	return animal, nil
}

func (c *Catalog) CreateAnimal(ctx context.Context, in NewAnimal) (data.Animal, error) {
	animal, err := buildAnimal(in)
	if err != nil {
		return data.Animal{}, err
	}
	if err := c.repository.InsertAnimal(ctx, &animal); err != nil {
		return data.Animal{}, fmt.Errorf("%w: error inserting animal: %w", ErrStore, err)
	}
	return animal, nil
}

// buildAnimal validates every field and reports all violations at once.
// A provided raised amount was collected elsewhere and becomes the baseline.
func buildAnimal(in NewAnimal) (data.Animal, error) {
	var vs violations

	name := strings.TrimSpace(in.Name)
	if name == "" {
		vs.add("name", "is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		vs.add("description", "is required")
	}
	image := strings.TrimSpace(in.Image)
	switch {
	case image == "":
		vs.add("image", "is required")
	case !validImageURL(image):
		vs.add("image", "must be an absolute http(s) URL")
	}

	urgency := data.UrgencyMedium
	if in.UrgencyLevel != "" {
		urgency = data.UrgencyLevel(in.UrgencyLevel)
		if !urgency.Valid() {
			vs.add("urgencyLevel", "must be one of low, medium, high")
		}
	}

	if in.TargetAmount != nil {
		switch {
		case !in.TargetAmount.IsPositive():
			vs.add("targetAmount", "must be greater than 0")
		case !validMoneyPlaces(*in.TargetAmount):
			vs.add("targetAmount", "must have at most 2 decimal places")
		case !withinMaxAmount(*in.TargetAmount):
			vs.add("targetAmount", "must not exceed "+maxAmount.String())
		}
	}

	raised := decimal.Zero
	if in.RaisedAmount != nil {
		raised = *in.RaisedAmount
		switch {
		case raised.IsNegative():
			vs.add("raisedAmount", "must not be negative")
		case !validMoneyPlaces(raised):
			vs.add("raisedAmount", "must have at most 2 decimal places")
		case !withinMaxAmount(raised):
			vs.add("raisedAmount", "must not exceed "+maxAmount.String())
		}
	}

	if err := vs.err(); err != nil {
		return data.Animal{}, err
	}

	var medicalNeeds *string
	if in.MedicalNeeds != nil {
		if trimmed := strings.TrimSpace(*in.MedicalNeeds); trimmed != "" {
			medicalNeeds = &trimmed
		}
	}

	return data.Animal{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    description,
		Image:          image,
		MedicalNeeds:   medicalNeeds,
		UrgencyLevel:   urgency,
		TargetAmount:   in.TargetAmount,
		RaisedAmount:   raised,
		BaselineAmount: raised,
	}, nil
}
