package vending

import (
	"path/filepath"
	"testing"

	"sodavend/internal/domain"
	"sodavend/internal/store"
)

func newInventory(t *testing.T, sodas []domain.Soda) *store.InventoryStore {
	t.Helper()
	s := store.NewInventoryStore(filepath.Join(t.TempDir(), "inventory.json"))
	s.Sodas = sodas
	if err := s.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	return s
}

func TestDispenseInsufficientFunds(t *testing.T) {
	inv := newInventory(t, []domain.Soda{{Name: "Cola", Stock: 5, Price: 8, Reserved: 1}})
	engine := NewEngine(inv)
	session := &Session{Balance: 5}

	result, err := engine.Dispense(session, &inv.Sodas[0], false)
	if err != nil {
		t.Fatalf("Dispense error: %v", err)
	}
	if result.Dispensed || result.Reason != ReasonInsufficientFunds {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Shortfall != 3 {
		t.Fatalf("want shortfall 3, got %d", result.Shortfall)
	}
	if session.Balance != 5 || inv.Sodas[0].Stock != 5 || inv.Sodas[0].Reserved != 1 {
		t.Fatalf("refusal must not mutate: balance=%d soda=%+v", session.Balance, inv.Sodas[0])
	}
}

func TestDispenseOutOfStock(t *testing.T) {
	inv := newInventory(t, []domain.Soda{{Name: "Cola", Stock: 0, Price: 8}})
	engine := NewEngine(inv)
	session := &Session{Balance: 100}

	result, err := engine.Dispense(session, &inv.Sodas[0], false)
	if err != nil {
		t.Fatalf("Dispense error: %v", err)
	}
	if result.Dispensed || result.Reason != ReasonOutOfStock {
		t.Fatalf("unexpected result: %+v", result)
	}
	if session.Balance != 100 {
		t.Fatalf("balance must be untouched, got %d", session.Balance)
	}
}

func TestDispenseReservedExclusion(t *testing.T) {
	inv := newInventory(t, []domain.Soda{{Name: "Cola", Stock: 2, Price: 8, Reserved: 2}})
	engine := NewEngine(inv)
	session := &Session{Balance: 10}

	// All remaining stock is earmarked: a plain order is refused.
	result, err := engine.Dispense(session, &inv.Sodas[0], false)
	if err != nil {
		t.Fatalf("Dispense error: %v", err)
	}
	if result.Dispensed || result.Reason != ReasonReservedUnavailable {
		t.Fatalf("unexpected result: %+v", result)
	}
	if session.Balance != 10 || inv.Sodas[0].Stock != 2 || inv.Sodas[0].Reserved != 2 {
		t.Fatalf("refusal must not mutate: balance=%d soda=%+v", session.Balance, inv.Sodas[0])
	}

	// The identical state succeeds as a claim.
	result, err = engine.Dispense(session, &inv.Sodas[0], true)
	if err != nil {
		t.Fatalf("Dispense error: %v", err)
	}
	if !result.Dispensed {
		t.Fatalf("claim refused: %+v", result)
	}
	if inv.Sodas[0].Stock != 1 || inv.Sodas[0].Reserved != 1 {
		t.Fatalf("claim must decrement stock and reserved: %+v", inv.Sodas[0])
	}
	if session.Balance != 0 {
		t.Fatalf("balance must reset, got %d", session.Balance)
	}
}

func TestDispenseSuccessAndChange(t *testing.T) {
	inv := newInventory(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8, Reserved: 0}})
	engine := NewEngine(inv)
	session := &Session{}
	session.Insert(10)

	result, err := engine.Dispense(session, &inv.Sodas[0], false)
	if err != nil {
		t.Fatalf("Dispense error: %v", err)
	}
	if !result.Dispensed {
		t.Fatalf("refused: %+v", result)
	}
	if result.Change != 2 {
		t.Fatalf("want change 2, got %d", result.Change)
	}
	if session.Balance != 0 {
		t.Fatalf("balance must reset, got %d", session.Balance)
	}
	if inv.Sodas[0].Stock != 0 || inv.Sodas[0].Reserved != 0 {
		t.Fatalf("unexpected counters: %+v", inv.Sodas[0])
	}

	// The decrement must be on disk.
	if err := inv.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if inv.Sodas[0].Stock != 0 {
		t.Fatalf("stock decrement not persisted: %+v", inv.Sodas[0])
	}
}

func TestSessionReturnChange(t *testing.T) {
	session := &Session{Balance: 7}
	if got := session.ReturnChange(); got != 7 {
		t.Fatalf("want 7, got %d", got)
	}
	if session.Balance != 0 {
		t.Fatalf("balance must reset, got %d", session.Balance)
	}
}
