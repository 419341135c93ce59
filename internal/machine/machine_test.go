package machine

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"sodavend/internal/domain"
	"sodavend/internal/store"
)

func newMachine(t *testing.T, sodas []domain.Soda, orders []domain.Order) (*Machine, *bytes.Buffer, *store.InventoryStore, *store.FileOrderStore) {
	t.Helper()
	dir := t.TempDir()

	inv := store.NewInventoryStore(filepath.Join(dir, "inventory.json"))
	inv.Sodas = sodas
	if err := inv.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	orderStore := store.NewFileOrderStore(filepath.Join(dir, "orders.json"))
	if err := orderStore.SaveAll(context.Background(), orders); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}

	var out bytes.Buffer
	return New(inv, orderStore, &out), &out, inv, orderStore
}

func runScript(t *testing.T, m *Machine, lines ...string) {
	t.Helper()
	if err := m.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n"))); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}

func TestInsertAndOrderScenario(t *testing.T) {
	m, out, inv, _ := newMachine(t,
		[]domain.Soda{{Name: "Cola", Stock: 1, Price: 8, Reserved: 0}}, nil)

	runScript(t, m, "insert 10", "order Cola")

	for _, want := range []string{
		"Adding 10 to current balance",
		"Giving Cola out",
		"Giving 2 out in change",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	if err := inv.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if inv.Sodas[0].Stock != 0 {
		t.Fatalf("stock not decremented: %+v", inv.Sodas[0])
	}
	if m.session.Balance != 0 {
		t.Fatalf("balance not reset: %d", m.session.Balance)
	}
}

func TestOrderSubcategory(t *testing.T) {
	m, out, _, _ := newMachine(t,
		[]domain.Soda{
			{Name: "Cola", Stock: 1, Price: 8},
			{Name: "Cola Diet", Stock: 1, Price: 8},
		}, nil)

	runScript(t, m, "insert 8", "order Cola Diet")
	if !strings.Contains(out.String(), "Giving Cola Diet out") {
		t.Fatalf("subcategory order failed:\n%s", out.String())
	}
}

func TestInsertValidation(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "insert ten", "insert -5")
	if got := strings.Count(out.String(), "Invalid credit amount specified, please try again!"); got != 2 {
		t.Fatalf("want 2 validation messages, got %d:\n%s", got, out.String())
	}
	if m.session.Balance != 0 {
		t.Fatalf("invalid inserts must not change balance: %d", m.session.Balance)
	}
}

func TestInsufficientFundsMessage(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "insert 5", "order Cola")
	if !strings.Contains(out.String(), "Need 3 more credits") {
		t.Fatalf("shortfall not reported:\n%s", out.String())
	}
}

func TestReservedStockExcluded(t *testing.T) {
	m, out, _, _ := newMachine(t,
		[]domain.Soda{{Name: "Cola", Stock: 2, Price: 8, Reserved: 2}}, nil)

	runScript(t, m, "insert 10", "order Cola")
	if !strings.Contains(out.String(), "No unreserved Cola left in stock") {
		t.Fatalf("reserved exclusion not reported:\n%s", out.String())
	}
}

func TestClaimFlow(t *testing.T) {
	m, out, inv, orders := newMachine(t,
		[]domain.Soda{{Name: "Cola", Stock: 1, Price: 8, Reserved: 1}},
		[]domain.Order{{ID: 1, Soda: "Cola", PinCode: 4242}})

	runScript(t, m, "insert 8", "claim 4242")
	if !strings.Contains(out.String(), "Giving Cola out") {
		t.Fatalf("claim did not dispense:\n%s", out.String())
	}

	if err := inv.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if inv.Sodas[0].Stock != 0 || inv.Sodas[0].Reserved != 0 {
		t.Fatalf("counters wrong after claim: %+v", inv.Sodas[0])
	}
	order, err := orders.FindByPin(context.Background(), 4242)
	if err != nil {
		t.Fatalf("FindByPin error: %v", err)
	}
	if !order.IsComplete {
		t.Fatal("order not marked complete")
	}
}

func TestClaimErrors(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "claim abcd", "claim 9999")
	if !strings.Contains(out.String(), "Invalid pin submitted, please try again") {
		t.Fatalf("parse failure message missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "No matching reservation found, are you sure you used the right pin?") {
		t.Fatalf("lookup failure message missing:\n%s", out.String())
	}
}

func TestRecall(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "insert 7", "recall")
	if !strings.Contains(out.String(), "Giving 7 out in change") {
		t.Fatalf("recall not reported:\n%s", out.String())
	}
	if m.session.Balance != 0 {
		t.Fatalf("recall must reset balance: %d", m.session.Balance)
	}
}

func TestStockListing(t *testing.T) {
	m, out, _, _ := newMachine(t,
		[]domain.Soda{{Name: "Cola", Stock: 3, Price: 8, Reserved: 1}}, nil)

	runScript(t, m, "stock")
	if !strings.Contains(out.String(), "Cola: 3 left in stock (1 reserved) - Cost: 8 Credits") {
		t.Fatalf("stock listing wrong:\n%s", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "frobnicate")
	if !strings.Contains(out.String(), "Invalid command given") {
		t.Fatalf("unknown command message missing:\n%s", out.String())
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	m, out, _, _ := newMachine(t, []domain.Soda{{Name: "Cola", Stock: 1, Price: 8}}, nil)

	runScript(t, m, "help")
	for name := range m.commands {
		if !strings.Contains(out.String(), name+" ") {
			t.Fatalf("help missing %q:\n%s", name, out.String())
		}
	}
}

func TestStaleInventoryRefreshed(t *testing.T) {
	m, out, inv, _ := newMachine(t,
		[]domain.Soda{{Name: "Cola", Stock: 1, Price: 8, Reserved: 0}}, nil)

	// Another process reserves the last Cola between commands.
	other := store.NewInventoryStore(inv.Path())
	if err := other.ReserveSoda("Cola"); err != nil {
		t.Fatalf("ReserveSoda error: %v", err)
	}

	runScript(t, m, "insert 10", "order Cola")
	if !strings.Contains(out.String(), "No unreserved Cola left in stock") {
		t.Fatalf("machine served stale inventory:\n%s", out.String())
	}
}
