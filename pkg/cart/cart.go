package cart

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/kvstore"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// KeyCart is the storage key holding the JSON-encoded item list.
const KeyCart = "cart"

// Item is a cart line: the product as it was when added, and how many.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is a snapshot of the cart.
type State struct {
	Items     []Item
	Total     decimal.Decimal
	ItemCount int
}

// Op names the mutation that produced an Event.
type Op string

const (
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpSetQuantity Op = "set_quantity"
	OpClear       Op = "clear"
)

// Event carries the cart state right after a mutation.
type Event struct {
	Op    Op
	State State
}

// Manager owns the cart. Safe for concurrent use.
type Manager struct {
	store kvstore.Store
	log   *slog.Logger

	mu    sync.RWMutex
	items []Item
	total decimal.Decimal
	count int

	events      *broadcast.Broadcaster[Event]
	eventBuffer int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer (default 16).
func WithEventBuffer(n int) Option {
	return func(m *Manager) {
		m.eventBuffer = n
	}
}

// New loads the persisted cart, or starts empty.
func New(ctx context.Context, store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		log:         logger.Discard(),
		eventBuffer: 16,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("cart"))
	m.events = broadcast.New[Event](m.eventBuffer)

	var items []Item
	err := kvstore.GetJSON(ctx, store, KeyCart, &items)
	switch {
	case err == nil:
		m.items = sanitize(items)
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		m.log.WarnContext(ctx, "ignoring unreadable cart entry", logger.Key(KeyCart), logger.Error(err))
	}
	m.recompute()
	return m
}

// Add puts quantity units of product in the cart, merging with an existing
// line for the same product. The stored snapshot of an existing line is kept.
func (m *Manager) Add(ctx context.Context, product catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if product.ID == 0 {
		return ErrInvalidProduct
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(product.ID); i >= 0 {
		m.items[i].Quantity += quantity
	} else {
		m.items = append(m.items, Item{Product: product.Clone(), Quantity: quantity})
	}
	m.commit(ctx, OpAdd)
	m.log.DebugContext(ctx, "item added", logger.ProductID(product.ID), logger.Quantity(quantity))
	return nil
}

// Remove drops the line for productID. Absent ids are ignored.
func (m *Manager) Remove(ctx context.Context, productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(productID)
	if i < 0 {
		return
	}
	m.items = slices.Delete(m.items, i, i+1)
	m.commit(ctx, OpRemove)
}

// SetQuantity sets a line's quantity; zero or less removes the line.
// Absent ids are ignored.
func (m *Manager) SetQuantity(ctx context.Context, productID int64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		m.items = slices.Delete(m.items, i, i+1)
	} else {
		m.items[i].Quantity = quantity
	}
	m.commit(ctx, OpSetQuantity)
}

// Clear empties the cart and removes the stored entry.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.recompute()
	if err := m.store.Delete(ctx, KeyCart); err != nil {
		m.log.WarnContext(ctx, "failed to remove cart", logger.Key(KeyCart), logger.Error(err))
	}
	m.events.Publish(Event{Op: OpClear, State: m.snapshot()})
}

// Items returns a deep copy of the cart lines in insertion order.
func (m *Manager) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneItems(m.items)
}

// Total is the sum of all line subtotals.
func (m *Manager) Total() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// ItemCount is the sum of all quantities.
func (m *Manager) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// State returns items and totals taken under one lock.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Subscribe delivers an Event after every mutation until ctx is done or the
// subscription is closed. Slow subscribers miss events rather than block.
func (m *Manager) Subscribe(ctx context.Context) *broadcast.Subscription[Event] {
	return m.events.Subscribe(ctx)
}

// Close ends every subscription.
func (m *Manager) Close() {
	m.events.Close()
}

// must be called with m.mu held
func (m *Manager) commit(ctx context.Context, op Op) {
	m.recompute()
	items := m.items
	if items == nil {
		items = []Item{}
	}
	if err := kvstore.SetJSON(ctx, m.store, KeyCart, items); err != nil {
		m.log.WarnContext(ctx, "failed to persist cart", logger.Key(KeyCart), logger.Error(err))
	}
	m.events.Publish(Event{Op: op, State: m.snapshot()})
}

// must be called with m.mu held
func (m *Manager) recompute() {
	total := decimal.Zero
	count := 0
	for _, it := range m.items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}
	m.total = total
	m.count = count
}

// must be called with m.mu held
func (m *Manager) snapshot() State {
	return State{Items: cloneItems(m.items), Total: m.total, ItemCount: m.count}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Product: it.Product.Clone(), Quantity: it.Quantity}
	}
	return out
}

func (m *Manager) index(productID int64) int {
	return slices.IndexFunc(m.items, func(it Item) bool { return it.Product.ID == productID })
}

// sanitize drops lines that could not have been produced by the mutators
// and merges duplicate product ids into the first occurrence.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.Product.ID == 0 {
			continue
		}
		if i, ok := seen[it.Product.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.Product.ID] = len(out)
		out = append(out, it)
	}
	return out
}
