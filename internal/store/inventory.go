package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sodavend/internal/domain"
)

var ErrSodaNotFound = errors.New("soda not found")

// InventoryStore owns the on-disk soda collection. Every decision that touches
// stock must Load first: the order service mutates the same file, and the
// machine has no other way to see its writes.
type InventoryStore struct {
	path  string
	Sodas []domain.Soda
}

func NewInventoryStore(path string) *InventoryStore {
	return &InventoryStore{path: path}
}

// Path is the location of the backing file.
func (s *InventoryStore) Path() string {
	return s.path
}

// Load replaces the in-memory collection with the on-disk state.
func (s *InventoryStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	var sodas []domain.Soda
	if err := json.Unmarshal(data, &sodas); err != nil {
		return fmt.Errorf("unmarshal inventory: %w", err)
	}
	s.Sodas = sodas
	return nil
}

// Save overwrites the inventory file with the in-memory collection.
func (s *InventoryStore) Save() error {
	out, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create inventory file: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Sodas); err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	return nil
}

// FindIndex returns the position of the soda with the exact name, or -1.
func (s *InventoryStore) FindIndex(name string) int {
	for i := range s.Sodas {
		if s.Sodas[i].Name == name {
			return i
		}
	}
	return -1
}

// Get resolves a soda by name, optionally composed with a subcategory
// ("Cola" + "Diet" -> "Cola Diet"). The returned pointer aliases the loaded
// collection so callers can mutate counters in place before Save.
func (s *InventoryStore) Get(name, subcategory string) (*domain.Soda, error) {
	key := name
	if subcategory != "" {
		key += " " + subcategory
	}
	i := s.FindIndex(key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSodaNotFound, key)
	}
	return &s.Sodas[i], nil
}

// ReserveSoda bumps the reserved counter for the named soda and persists.
// It deliberately does not check Reserved against Stock; the machine's
// dispense rules are the sole enforcement point.
func (s *InventoryStore) ReserveSoda(name string) error {
	if err := s.Load(); err != nil {
		return err
	}
	i := s.FindIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrSodaNotFound, name)
	}
	s.Sodas[i].Reserved++
	return s.Save()
}
