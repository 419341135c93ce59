package vending

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"sodavend/internal/store"
)

var (
	// ErrInvalidPin means the submitted pin did not parse as a number.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrNoReservation means the pin parsed but matches no order.
	ErrNoReservation = errors.New("no matching reservation")
)

// Claimer redeems reserved orders at the machine: it resolves a pin to its
// soda, dispenses with the claim flag set, and retires the order on success.
type Claimer struct {
	engine    *Engine
	inventory *store.InventoryStore
	orders    store.OrderStore
}

func NewClaimer(engine *Engine, inventory *store.InventoryStore, orders store.OrderStore) *Claimer {
	return &Claimer{engine: engine, inventory: inventory, orders: orders}
}

// ClaimByPin runs one claim attempt. A refusal by the dispense rules comes
// back in the result; a bad or unknown pin comes back as ErrInvalidPin or
// ErrNoReservation so the caller can tell the customer which it was.
func (c *Claimer) ClaimByPin(ctx context.Context, session *Session, rawPin string) (DispenseResult, string, error) {
	pin, err := strconv.Atoi(rawPin)
	if err != nil {
		return DispenseResult{}, "", fmt.Errorf("%w: %q", ErrInvalidPin, rawPin)
	}

	claimable, err := c.orders.Exists(ctx, pin)
	if err != nil {
		return DispenseResult{}, "", err
	}
	if !claimable {
		return DispenseResult{}, "", fmt.Errorf("%w: pin %d", ErrNoReservation, pin)
	}

	sodaName, err := c.orders.SodaNameForPin(ctx, pin)
	if err != nil {
		return DispenseResult{}, "", err
	}
	soda, err := c.inventory.Get(sodaName, "")
	if err != nil {
		return DispenseResult{}, "", err
	}

	result, err := c.engine.Dispense(session, soda, true)
	if err != nil {
		return DispenseResult{}, "", err
	}
	if result.Dispensed {
		if err := c.orders.MarkComplete(ctx, pin); err != nil {
			return result, soda.Name, err
		}
	}
	return result, soda.Name, nil
}
