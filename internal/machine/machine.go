package machine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sodavend/internal/store"
	"sodavend/internal/vending"
)

// Command is one machine command available to the customer. Run receives up
// to two positional parameters, empty when not given.
type Command struct {
	Description string
	Run         func(ctx context.Context, p1, p2 string)
}

// Machine is the console front of the vending machine. It owns the session
// balance and refreshes the inventory from disk before every command so
// reservations made through the order service are visible immediately.
type Machine struct {
	session   *vending.Session
	inventory *store.InventoryStore
	engine    *vending.Engine
	claimer   *vending.Claimer
	out       io.Writer

	commands map[string]Command
	cmdOrder []string
}

func New(inventory *store.InventoryStore, orders store.OrderStore, out io.Writer) *Machine {
	engine := vending.NewEngine(inventory)
	m := &Machine{
		session:   &vending.Session{},
		inventory: inventory,
		engine:    engine,
		claimer:   vending.NewClaimer(engine, inventory, orders),
		out:       out,
	}
	m.registerCommands()
	return m
}

func (m *Machine) registerCommands() {
	m.commands = map[string]Command{
		"stock": {
			Description: "- Displays an overview of the machine's current stock",
			Run:         func(ctx context.Context, p1, p2 string) { m.showStock() },
		},
		"insert": {
			Description: "[addedCredits] - Inserts additional credits to the machine balance",
			Run:         func(ctx context.Context, p1, p2 string) { m.insertCredits(p1) },
		},
		"order": {
			Description: "[nameOfSoda] - Orders the specified soda, and dispenses it given sufficient funds and stock",
			Run:         func(ctx context.Context, p1, p2 string) { m.orderSoda(p1, p2) },
		},
		"claim": {
			Description: "[retrievalPin] - Claims a reserved soda",
			Run:         func(ctx context.Context, p1, p2 string) { m.claimSoda(ctx, p1) },
		},
		"recall": {
			Description: "- Recalls all current credit of the machine",
			Run:         func(ctx context.Context, p1, p2 string) { m.returnChange() },
		},
		"help": {
			Description: "- Returns a description of all available commands for the user",
			Run:         func(ctx context.Context, p1, p2 string) { m.showHelp() },
		},
		"clear": {
			Description: "- Clears the console window for text",
			Run:         func(ctx context.Context, p1, p2 string) { fmt.Fprint(m.out, "\x1b[2J\x1b[H") },
		},
	}
	m.cmdOrder = []string{"stock", "insert", "order", "recall", "help", "clear", "claim"}
}

// Run reads commands line by line until input ends.
func (m *Machine) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(m.out, "\nWelcome to Fizz-Buzz Soda!")
	fmt.Fprintln(m.out, "Please type \"help\" if you would like to see what commands are available")

	scanner := bufio.NewScanner(in)
	for {
		m.showBalance()
		if !scanner.Scan() {
			return scanner.Err()
		}
		// Refresh before executing so this command sees the order service's
		// latest writes.
		if err := m.inventory.Load(); err != nil {
			fmt.Fprintf(m.out, "Inventory unavailable: %v\n", err)
			continue
		}
		m.Execute(ctx, scanner.Text())
	}
}

// Execute parses one input line and runs the matching command.
func (m *Machine) Execute(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}
	var p1, p2 string
	if len(parts) > 1 {
		p1 = parts[1]
	}
	if len(parts) > 2 {
		p2 = parts[2]
	}

	cmd, ok := m.commands[parts[0]]
	if !ok {
		fmt.Fprintln(m.out, "Invalid command given, try command \"help\" if you would like to learn about the available commands")
		return
	}
	cmd.Run(ctx, p1, p2)
}

func (m *Machine) showBalance() {
	fmt.Fprintln(m.out, "-------")
	fmt.Fprintf(m.out, "Inserted Credits: %d\n", m.session.Balance)
	fmt.Fprint(m.out, "-------\n\n")
}

func (m *Machine) showStock() {
	for _, soda := range m.inventory.Sodas {
		fmt.Fprintf(m.out, "%s: %d left in stock (%d reserved) - Cost: %d Credits\n",
			soda.Name, soda.Stock, soda.Reserved, soda.Price)
	}
}

func (m *Machine) insertCredits(amount string) {
	credits, err := strconv.Atoi(amount)
	if err != nil || credits < 0 {
		fmt.Fprintln(m.out, "Invalid credit amount specified, please try again!")
		return
	}
	m.session.Insert(credits)
	fmt.Fprintf(m.out, "Adding %d to current balance\n", credits)
}

func (m *Machine) orderSoda(name, subcategory string) {
	soda, err := m.inventory.Get(name, subcategory)
	if err != nil {
		fmt.Fprintln(m.out, "No such soda in this machine, try \"stock\" to see what is available")
		return
	}
	result, err := m.engine.Dispense(m.session, soda, false)
	if err != nil {
		fmt.Fprintf(m.out, "Machine error: %v\n", err)
		return
	}
	m.reportDispense(result, soda.Name)
}

func (m *Machine) claimSoda(ctx context.Context, rawPin string) {
	result, sodaName, err := m.claimer.ClaimByPin(ctx, m.session, rawPin)
	switch {
	case errors.Is(err, vending.ErrInvalidPin):
		fmt.Fprintln(m.out, "Invalid pin submitted, please try again")
		return
	case errors.Is(err, vending.ErrNoReservation):
		fmt.Fprintln(m.out, "No matching reservation found, are you sure you used the right pin?")
		return
	case err != nil:
		fmt.Fprintf(m.out, "Machine error: %v\n", err)
		return
	}
	m.reportDispense(result, sodaName)
}

func (m *Machine) reportDispense(result vending.DispenseResult, sodaName string) {
	if result.Dispensed {
		fmt.Fprintf(m.out, "Giving %s out\n", sodaName)
		fmt.Fprintf(m.out, "Giving %d out in change\n", result.Change)
		return
	}
	switch result.Reason {
	case vending.ReasonInsufficientFunds:
		fmt.Fprintf(m.out, "Need %d more credits\n", result.Shortfall)
	case vending.ReasonOutOfStock:
		fmt.Fprintf(m.out, "No %s left in stock\n", sodaName)
	case vending.ReasonReservedUnavailable:
		fmt.Fprintf(m.out, "No unreserved %s left in stock\n", sodaName)
	}
}

func (m *Machine) returnChange() {
	fmt.Fprintf(m.out, "Giving %d out in change\n", m.session.ReturnChange())
}

func (m *Machine) showHelp() {
	for _, name := range m.cmdOrder {
		fmt.Fprintf(m.out, "%s %s\n", name, m.commands[name].Description)
	}
}
