package vending

import (
	"sodavend/internal/domain"
	"sodavend/internal/store"
)

// RejectReason says why a dispense attempt was refused.
type RejectReason string

const (
	ReasonInsufficientFunds   RejectReason = "insufficient_funds"
	ReasonOutOfStock          RejectReason = "out_of_stock"
	ReasonReservedUnavailable RejectReason = "reserved_unavailable"
)

// DispenseResult is the outcome of a single dispense attempt. A refusal is a
// normal result, not an error; only storage failure surfaces as an error.
type DispenseResult struct {
	Dispensed bool
	Reason    RejectReason
	// Shortfall is the missing credit when Reason is insufficient funds.
	Shortfall int
	// Change is the credit returned after a successful dispense.
	Change int
}

// Session holds the credits currently inserted into one machine. All commands
// of a machine run share it; any successful dispense or an explicit recall
// empties it.
type Session struct {
	Balance int
}

// Insert adds credits to the session balance.
func (s *Session) Insert(amount int) {
	s.Balance += amount
}

// ReturnChange empties the balance and reports what was given back.
func (s *Session) ReturnChange() int {
	change := s.Balance
	s.Balance = 0
	return change
}

// Engine decides and executes dispense attempts against the inventory.
type Engine struct {
	inventory *store.InventoryStore
}

func NewEngine(inventory *store.InventoryStore) *Engine {
	return &Engine{inventory: inventory}
}

// Dispense runs one dispense attempt for soda against the session balance.
// The rules apply in order and are mutually exclusive:
//
//  1. balance below price: refused, nothing changes.
//  2. nothing in stock: refused.
//  3. remaining stock all reserved and this is not a claim: refused; only a
//     claim may draw on reserved stock.
//  4. otherwise dispense: charge the price, return the rest of the balance as
//     change, decrement stock (and reserved when claiming), persist.
//
// soda must alias the engine's loaded inventory so the persisted state carries
// the decrement.
func (e *Engine) Dispense(session *Session, soda *domain.Soda, claim bool) (DispenseResult, error) {
	if session.Balance < soda.Price {
		return DispenseResult{
			Reason:    ReasonInsufficientFunds,
			Shortfall: soda.Price - session.Balance,
		}, nil
	}
	if soda.Stock <= 0 {
		return DispenseResult{Reason: ReasonOutOfStock}, nil
	}
	if soda.Stock <= soda.Reserved && !claim {
		return DispenseResult{Reason: ReasonReservedUnavailable}, nil
	}

	session.Balance -= soda.Price
	change := session.ReturnChange()
	soda.Stock--
	if claim {
		soda.Reserved--
	}
	if err := e.inventory.Save(); err != nil {
		return DispenseResult{}, err
	}
	return DispenseResult{Dispensed: true, Change: change}, nil
}
