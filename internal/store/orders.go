package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"sodavend/internal/domain"
)

const (
	// Retrieval pins are four-digit-ish codes handed to customers.
	PinMin = 1111
	PinMax = 9999
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrPinsExhausted = errors.New("no retrieval pins left to allocate")
)

// OrderStore is the single persistence boundary for reservation orders. The
// machine and the order service both go through it; which backend sits behind
// it (JSON file or Postgres) is a deployment choice.
type OrderStore interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	FindByPin(ctx context.Context, pin int) (domain.Order, error)
	Exists(ctx context.Context, pin int) (bool, error)
	SodaNameForPin(ctx context.Context, pin int) (string, error)
	Append(ctx context.Context, order domain.Order) error
	SaveAll(ctx context.Context, orders []domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, id int64) error
	MarkComplete(ctx context.Context, pin int) error
	NextID(ctx context.Context) (int64, error)
	AllocatePin(ctx context.Context) (int, error)
}

// FileOrderStore keeps the order collection in a single JSON array file.
// Every operation is a full read-modify-write cycle; there is no locking
// against the other process, which matches the machine's best-effort design.
type FileOrderStore struct {
	path string
}

func NewFileOrderStore(path string) *FileOrderStore {
	return &FileOrderStore{path: path}
}

func (s *FileOrderStore) load() ([]domain.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return orders, nil
}

func (s *FileOrderStore) save(orders []domain.Order) error {
	out, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create orders file: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(orders); err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	return nil
}

func (s *FileOrderStore) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.load()
}

func (s *FileOrderStore) Get(ctx context.Context, id int64) (domain.Order, error) {
	orders, err := s.load()
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
}

func (s *FileOrderStore) FindByPin(ctx context.Context, pin int) (domain.Order, error) {
	orders, err := s.load()
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.PinCode == pin {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: pin %d", ErrOrderNotFound, pin)
}

func (s *FileOrderStore) Exists(ctx context.Context, pin int) (bool, error) {
	_, err := s.FindByPin(ctx, pin)
	if errors.Is(err, ErrOrderNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileOrderStore) SodaNameForPin(ctx context.Context, pin int) (string, error) {
	order, err := s.FindByPin(ctx, pin)
	if err != nil {
		return "", err
	}
	return order.Soda, nil
}

func (s *FileOrderStore) Append(ctx context.Context, order domain.Order) error {
	orders, err := s.load()
	if err != nil {
		return err
	}
	orders = append(orders, order)
	return s.save(orders)
}

// SaveAll overwrites the whole collection.
func (s *FileOrderStore) SaveAll(ctx context.Context, orders []domain.Order) error {
	return s.save(orders)
}

func (s *FileOrderStore) Update(ctx context.Context, order domain.Order) error {
	orders, err := s.load()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			return s.save(orders)
		}
	}
	return fmt.Errorf("%w: id %d", ErrOrderNotFound, order.ID)
}

func (s *FileOrderStore) Delete(ctx context.Context, id int64) error {
	orders, err := s.load()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders = append(orders[:i], orders[i+1:]...)
			return s.save(orders)
		}
	}
	return fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
}

// MarkComplete flips the completion flag for the order holding pin. A pin with
// no order is a no-op.
func (s *FileOrderStore) MarkComplete(ctx context.Context, pin int) error {
	orders, err := s.load()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].PinCode == pin {
			orders[i].IsComplete = true
			return s.save(orders)
		}
	}
	return nil
}

func (s *FileOrderStore) NextID(ctx context.Context) (int64, error) {
	orders, err := s.load()
	if err != nil {
		return 0, err
	}
	return nextID(orders), nil
}

func (s *FileOrderStore) AllocatePin(ctx context.Context) (int, error) {
	orders, err := s.load()
	if err != nil {
		return 0, err
	}
	used := make(map[int]bool, len(orders))
	for _, o := range orders {
		used[o.PinCode] = true
	}
	return allocatePin(used)
}

func nextID(orders []domain.Order) int64 {
	var max int64
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

// allocatePin picks uniformly among the pins in [PinMin, PinMax] not yet in
// use. Completed orders keep their pin, so the pool only ever shrinks.
func allocatePin(used map[int]bool) (int, error) {
	candidates := make([]int, 0, PinMax-PinMin+1)
	for pin := PinMin; pin <= PinMax; pin++ {
		if !used[pin] {
			candidates = append(candidates, pin)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrPinsExhausted
	}
	return candidates[rand.Intn(len(candidates))], nil
}
