// Package fallback keeps guest order records on local disk when remote
// persistence is unavailable or unauthorized.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
)

// DefaultCapacity bounds the number of locally kept order records.
const DefaultCapacity = 20

// OrderStore is the remote side that Sync drains records into.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *model.Order) error
	FindOrderByTx(ctx context.Context, txRef, txID string) (*model.Order, error)
}

// Store is a bounded, most-recent-first queue of order records backed by a
// JSON file. It stands in for the browser-local storage of the original
// storefront: records live here until the user authenticates and syncs.
type Store struct {
	mu       sync.Mutex
	path     string
	capacity int
}

// NewStore creates the backing directory if needed. A capacity below one
// falls back to DefaultCapacity.
func NewStore(dir string, capacity int) (*Store, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	return &Store{
		path:     filepath.Join(dir, "orders.json"),
		capacity: capacity,
	}, nil
}

func (s *Store) load() ([]model.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read fallback file: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		// A corrupt file must not wedge checkout; start over.
		return nil, nil
	}
	return orders, nil
}

func (s *Store) save(orders []model.Order) error {
	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fallback orders: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fallback file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace fallback file: %w", err)
	}
	return nil
}

// Append puts an order record at the front of the queue, dropping the oldest
// record when the capacity is exceeded.
func (s *Store) Append(o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}

	orders = append([]model.Order{o}, orders...)
	if len(orders) > s.capacity {
		orders = orders[:s.capacity]
	}

	return s.save(orders)
}

// List returns the locally kept records, most recent first.
func (s *Store) List() ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Clear drops all locally kept records.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove fallback file: %w", err)
	}
	return nil
}

// Sync drains local records into the remote store for a now-authenticated
// user. Records whose transaction reference is already recorded remotely are
// dropped, not duplicated. Records that fail to persist stay local; the
// number of records moved or deduplicated is returned alongside the error.
func (s *Store) Sync(ctx context.Context, remote OrderStore, userID int64, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	var (
		remaining []model.Order
		moved     int
		firstErr  error
	)
	for _, o := range orders {
		existing, err := remote.FindOrderByTx(ctx, o.Payment.TxRef, o.Payment.TxID)
		if err == nil && existing != nil {
			moved++
			continue
		}
		if err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
			if firstErr == nil {
				firstErr = err
			}
			remaining = append(remaining, o)
			continue
		}

		o.UserID = &userID
		if o.UserEmail == "" {
			o.UserEmail = email
		}
		if err := remote.CreateOrder(ctx, &o); err != nil {
			if errors.Is(err, repository.ErrOrderExists) {
				moved++
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			remaining = append(remaining, o)
			continue
		}
		moved++
	}

	if err := s.save(remaining); err != nil && firstErr == nil {
		firstErr = err
	}

	return moved, firstErr
}
