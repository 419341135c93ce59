package reservation

import (
	"context"
	"fmt"

	"sodavend/internal/domain"
	"sodavend/internal/store"
)

// Service creates reservation orders on behalf of remote customers.
type Service struct {
	inventory *store.InventoryStore
	orders    store.OrderStore
}

func NewService(inventory *store.InventoryStore, orders store.OrderStore) *Service {
	return &Service{inventory: inventory, orders: orders}
}

// CreateOrder reserves one soda: it allocates a fresh pin and order id,
// persists the order, then bumps the soda's reserved counter in the inventory.
// The two stores are written independently, so a crash between them can leave
// an order without its reservation bump.
func (s *Service) CreateOrder(ctx context.Context, sodaName string) (domain.Order, error) {
	// Fail before any write when the soda does not exist at all.
	if err := s.inventory.Load(); err != nil {
		return domain.Order{}, err
	}
	if _, err := s.inventory.Get(sodaName, ""); err != nil {
		return domain.Order{}, err
	}

	pin, err := s.orders.AllocatePin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("allocate pin: %w", err)
	}
	id, err := s.orders.NextID(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:         id,
		Soda:       sodaName,
		PinCode:    pin,
		IsComplete: false,
	}
	if err := s.orders.Append(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := s.inventory.ReserveSoda(sodaName); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
