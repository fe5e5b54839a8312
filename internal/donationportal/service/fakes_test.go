package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"animal-donations/internal/common/gatewayprotocol"
	"animal-donations/internal/donationportal/data"
)

// memStore keeps animals and donations in maps. The transaction manager
// snapshots it and restores the snapshot on error.
type memStore struct {
	mu        sync.Mutex
	animals   map[string]data.Animal
	donations map[string]data.Donation
	clock     time.Time
	failOn    map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		animals:   map[string]data.Animal{},
		donations: map[string]data.Donation{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failOn:    map[string]error{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

func (s *memStore) InsertAnimal(_ context.Context, animal *data.Animal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertAnimal"); err != nil {
		return err
	}
	if _, ok := s.animals[animal.ID]; ok {
		return data.ErrUniqueConstraintViolation
	}
	animal.CreatedAt = s.tick()
	animal.UpdatedAt = animal.CreatedAt
	s.animals[animal.ID] = *animal
	return nil
}

func (s *memStore) GetAnimal(_ context.Context, id string) (data.Animal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	animal, ok := s.animals[id]
	if !ok {
		return data.Animal{}, data.ErrNotFound
	}
	return animal, nil
}

func (s *memStore) GetAnimalForUpdate(ctx context.Context, id string) (data.Animal, error) {
	return s.GetAnimal(ctx, id)
}

func (s *memStore) GetAllAnimals(_ context.Context) ([]data.Animal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAllAnimals"); err != nil {
		return nil, err
	}
	res := make([]data.Animal, 0, len(s.animals))
	for _, a := range s.animals {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *memStore) IncreaseRaisedAmount(_ context.Context, animalID string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("IncreaseRaisedAmount"); err != nil {
		return err
	}
	animal, ok := s.animals[animalID]
	if !ok {
		return data.ErrNotFound
	}
	animal.RaisedAmount = animal.RaisedAmount.Add(delta)
	s.animals[animalID] = animal
	return nil
}

func (s *memStore) SetRaisedAmount(_ context.Context, animalID string, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	animal, ok := s.animals[animalID]
	if !ok {
		return data.ErrNotFound
	}
	animal.RaisedAmount = value
	s.animals[animalID] = animal
	return nil
}

func (s *memStore) GetCompletedDonationsSum(_ context.Context, animalID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, d := range s.donations {
		if d.AnimalID == animalID && d.Status == data.CompletedStatus {
			sum = sum.Add(d.Amount)
		}
	}
	return sum, nil
}

func (s *memStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals = map[string]data.Animal{}
	s.donations = map[string]data.Donation{}
	return nil
}

func (s *memStore) InsertDonation(_ context.Context, donation *data.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertDonation"); err != nil {
		return err
	}
	if _, ok := s.animals[donation.AnimalID]; !ok {
		return data.ErrForeignKeyViolation
	}
	for _, d := range s.donations {
		if d.RazorpayOrderID == donation.RazorpayOrderID {
			return data.ErrUniqueConstraintViolation
		}
	}
	donation.CreatedAt = s.tick()
	donation.UpdatedAt = donation.CreatedAt
	s.donations[donation.ID] = *donation
	return nil
}

func (s *memStore) GetDonationByOrderIDForUpdate(_ context.Context, orderID string) (data.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.donations {
		if d.RazorpayOrderID == orderID {
			return d, nil
		}
	}
	return data.Donation{}, data.ErrNotFound
}

func (s *memStore) SetDonationStatus(
	_ context.Context,
	donationID string,
	status data.Status,
	paymentID *string,
	signature *string,
) (data.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return data.Donation{}, data.ErrNotFound
	}
	d.Status = status
	if paymentID != nil {
		d.RazorpayPaymentID = paymentID
	}
	if signature != nil {
		d.RazorpaySignature = signature
	}
	d.UpdatedAt = s.tick()
	s.donations[donationID] = d
	return d, nil
}

func (s *memStore) GetDonationsByAnimal(_ context.Context, animalID string, status data.Status) ([]data.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]data.Donation, 0)
	for _, d := range s.donations {
		if d.AnimalID == animalID && d.Status == status {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (s *memStore) GetPendingDonations(_ context.Context, createdBefore time.Time, limit int) ([]data.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]data.Donation, 0)
	for _, d := range s.donations {
		if d.Status == data.PendingStatus && d.CreatedAt.Before(createdBefore) {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *memStore) donationsByStatus(status data.Status) []data.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]data.Donation, 0)
	for _, d := range s.donations {
		if d.Status == status {
			res = append(res, d)
		}
	}
	return res
}

func (s *memStore) snapshot() (map[string]data.Animal, map[string]data.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	animals := make(map[string]data.Animal, len(s.animals))
	for k, v := range s.animals {
		animals[k] = v
	}
	donations := make(map[string]data.Donation, len(s.donations))
	for k, v := range s.donations {
		donations[k] = v
	}
	return animals, donations
}

func (s *memStore) restore(animals map[string]data.Animal, donations map[string]data.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals = animals
	s.donations = donations
}

type txKey struct{}

type memTransactionManager struct {
	store *memStore
	mu    sync.Mutex
	count int
}

func (tm *memTransactionManager) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return f(ctx)
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.count++
	animals, donations := tm.store.snapshot()
	if err := f(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.restore(animals, donations)
		return err
	}
	return nil
}

type fakeGateway struct {
	keyID    string
	calls    []decimal.Decimal
	receipts []string
	err      error
	nextID   int
}

func (g *fakeGateway) Configured() bool {
	return g.keyID != ""
}

func (g *fakeGateway) KeyID() string {
	return g.keyID
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string) (gatewayprotocol.Order, error) {
	g.calls = append(g.calls, amount)
	g.receipts = append(g.receipts, receipt)
	if g.err != nil {
		return gatewayprotocol.Order{}, g.err
	}
	g.nextID++
	return gatewayprotocol.Order{
		ID:       fmt.Sprintf("order_%d", g.nextID),
		Amount:   amount.Shift(2).IntPart(),
		Currency: "INR",
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type recordedEvents struct {
	mu        sync.Mutex
	completed []data.Donation
	failed    []data.Donation
	err       error
}

func (e *recordedEvents) DonationCompleted(_ context.Context, donation data.Donation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, donation)
	return e.err
}

func (e *recordedEvents) DonationFailed(_ context.Context, donation data.Donation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, donation)
	return e.err
}

var errBoom = errors.New("boom")
