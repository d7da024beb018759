package kitchen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// ExpiryWarningWindow is how far ahead items count as expiring soon.
	ExpiryWarningWindow = 3 * 24 * time.Hour
	// PurchasedShelfLife is the expiry given to items created from purchases.
	PurchasedShelfLife = 30 * 24 * time.Hour
)

// Item is a stocked ingredient. BaseQuantity and BaseUnit shadow Quantity
// and Unit and are recomputed whenever name, quantity or unit change.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	BaseQuantity float64   `json:"baseQuantity"`
	BaseUnit     BaseUnit  `json:"baseUnit"`
	ExpiryDate   time.Time `json:"expiryDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type NewItem struct {
	Name       string
	Category   string
	Quantity   float64
	Unit       string
	ExpiryDate time.Time
}

// ItemUpdate patches an item. Nil fields are left alone.
type ItemUpdate struct {
	Name       *string
	Category   *string
	Quantity   *float64
	Unit       *string
	ExpiryDate *time.Time
}

// ShoppingItem is an entry of the shopping list.
type ShoppingItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	BaseQuantity    float64   `json:"baseQuantity"`
	BaseUnit        BaseUnit  `json:"baseUnit"`
	IsAutoGenerated bool      `json:"isAutoGenerated"`
	IsPurchased     bool      `json:"isPurchased"`
	CreatedAt       time.Time `json:"createdAt"`
}

type NewShoppingItem struct {
	Name            string
	Category        string
	Quantity        float64
	Unit            string
	IsAutoGenerated bool
}

type ShoppingUpdate struct {
	Name        *string
	Category    *string
	Quantity    *float64
	Unit        *string
	IsPurchased *bool
}

// EventKind names a ledger mutation.
type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemUpdated     EventKind = "item_updated"
	EventItemDeleted     EventKind = "item_deleted"
	EventShoppingAdded   EventKind = "shopping_added"
	EventShoppingUpdated EventKind = "shopping_updated"
	EventShoppingRemoved EventKind = "shopping_removed"
	EventPurchased       EventKind = "purchased"
	EventConsumed        EventKind = "consumed"
	EventLedgerRestored  EventKind = "restored"
)

type Event struct {
	Kind      EventKind
	ID        string
	Timestamp time.Time
}

// HookFunc runs after every ledger mutation, outside the ledger lock.
type HookFunc func(ev Event, l *Ledger) error

// Ledger owns stocked items and the shopping list and keeps their cached base
// quantities consistent with the conversion table.
type Ledger struct {
	mutex    sync.Mutex
	conv     *Converter
	fallback FallbackPolicy
	now      func() time.Time
	logger   zerolog.Logger

	items    []Item
	shopping []ShoppingItem
	logs     []string
	hooks    []HookFunc
}

type LedgerOption func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithFallback replaces RawQuantityFallback.
func WithFallback(policy FallbackPolicy) LedgerOption {
	return func(l *Ledger) {
		l.fallback = policy
	}
}

func WithLedgerLogger(logger zerolog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger.With().Str("component", "ledger").Logger()
	}
}

// WithHook registers a hook at construction.
func WithHook(hook HookFunc) LedgerOption {
	return func(l *Ledger) {
		l.hooks = append(l.hooks, hook)
	}
}

func NewLedger(conv *Converter, opts ...LedgerOption) *Ledger {
	if conv == nil {
		conv = NewConverter(nil)
	}
	l := &Ledger{
		conv:     conv,
		fallback: RawQuantityFallback,
		now:      time.Now,
		logger:   log.Logger.With().Str("component", "ledger").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Converter returns the converter the ledger normalizes with.
func (l *Ledger) Converter() *Converter {
	return l.conv
}

// AddHook registers a hook run after every mutation.
func (l *Ledger) AddHook(hook HookFunc) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.hooks = append(l.hooks, hook)
}

func checkQuantity(qty float64) error {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, qty)
	}
	return nil
}

func (l *Ledger) normalize(name string, qty float64, unit string, prev BaseUnit) (Quantity, error) {
	q, resolved, err := l.conv.Normalize(name, qty, unit, prev, l.fallback)
	if err != nil {
		return Quantity{}, err
	}
	if !resolved {
		l.logger.Warn().
			Str("ingredient", name).
			Str("unit", unit).
			Float64("base_quantity", q.Quantity).
			Str("base_unit", string(q.Unit)).
			Msg("conversion unresolved, fallback applied")
	}
	return q, nil
}

// AddItem stocks a new item.
func (l *Ledger) AddItem(n NewItem) (Item, error) {
	l.mutex.Lock()
	item, err := l.addItemLocked(n)
	l.mutex.Unlock()
	if err != nil {
		return Item{}, err
	}
	l.runHooks(Event{Kind: EventItemAdded, ID: item.ID, Timestamp: item.CreatedAt})
	return item, nil
}

func (l *Ledger) addItemLocked(n NewItem) (Item, error) {
	if NormalizeName(n.Name) == "" {
		return Item{}, fmt.Errorf("%w: item name cannot be empty", ErrInvalidEntry)
	}
	if err := checkQuantity(n.Quantity); err != nil {
		return Item{}, err
	}
	base, err := l.normalize(n.Name, n.Quantity, n.Unit, "")
	if err != nil {
		return Item{}, err
	}
	now := l.now()
	item := Item{
		ID:           GenerateUUID(),
		Name:         n.Name,
		Category:     n.Category,
		Quantity:     n.Quantity,
		Unit:         n.Unit,
		BaseQuantity: base.Quantity,
		BaseUnit:     base.Unit,
		ExpiryDate:   n.ExpiryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.items = append(l.items, item)
	l.logs = append(l.logs, "Item "+item.ID+" added")
	l.restockLocked()
	return item, nil
}

// UpdateItem patches an item and recomputes its base quantity when name,
// quantity or unit change.
func (l *Ledger) UpdateItem(id string, upd ItemUpdate) (Item, error) {
	l.mutex.Lock()
	item, err := l.updateItemLocked(id, upd)
	l.mutex.Unlock()
	if err != nil {
		return Item{}, err
	}
	l.runHooks(Event{Kind: EventItemUpdated, ID: item.ID, Timestamp: item.UpdatedAt})
	return item, nil
}

func (l *Ledger) updateItemLocked(id string, upd ItemUpdate) (Item, error) {
	i := l.itemIndexLocked(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	item := l.items[i]
	if upd.Name != nil {
		if NormalizeName(*upd.Name) == "" {
			return Item{}, fmt.Errorf("%w: item name cannot be empty", ErrInvalidEntry)
		}
		item.Name = *upd.Name
	}
	if upd.Category != nil {
		item.Category = *upd.Category
	}
	if upd.Quantity != nil {
		if err := checkQuantity(*upd.Quantity); err != nil {
			return Item{}, err
		}
		item.Quantity = *upd.Quantity
	}
	if upd.Unit != nil {
		item.Unit = *upd.Unit
	}
	if upd.ExpiryDate != nil {
		item.ExpiryDate = *upd.ExpiryDate
	}
	if upd.Name != nil || upd.Quantity != nil || upd.Unit != nil {
		base, err := l.normalize(item.Name, item.Quantity, item.Unit, item.BaseUnit)
		if err != nil {
			return Item{}, err
		}
		item.BaseQuantity = base.Quantity
		item.BaseUnit = base.Unit
	}
	item.UpdatedAt = l.now()
	l.items[i] = item
	l.logs = append(l.logs, "Item "+item.ID+" updated")
	l.restockLocked()
	return item, nil
}

// DeleteItem removes an item from stock.
func (l *Ledger) DeleteItem(id string) error {
	l.mutex.Lock()
	i := l.itemIndexLocked(id)
	if i < 0 {
		l.mutex.Unlock()
		return fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.logs = append(l.logs, "Item "+id+" deleted")
	l.mutex.Unlock()
	l.runHooks(Event{Kind: EventItemDeleted, ID: id, Timestamp: l.now()})
	return nil
}

// Items returns a copy of the stock in insertion order.
func (l *Ledger) Items() []Item {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]Item(nil), l.items...)
}

func (l *Ledger) Item(id string) (Item, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	i := l.itemIndexLocked(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	return l.items[i], nil
}

// FindItem returns the stock item whose normalized name equals name.
// Duplicate names are reported as ErrAmbiguousStock.
func (l *Ledger) FindItem(name string) (Item, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	i, err := l.itemByNameLocked(name)
	if err != nil {
		return Item{}, err
	}
	return l.items[i], nil
}

func (l *Ledger) itemIndexLocked(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) itemByNameLocked(name string) (int, error) {
	idx, err := NewStockIndex(l.items).lookup(NormalizeName(name))
	if err != nil {
		return -1, err
	}
	return idx, nil
}

// AddShoppingItem puts an entry on the shopping list.
func (l *Ledger) AddShoppingItem(n NewShoppingItem) (ShoppingItem, error) {
	l.mutex.Lock()
	si, err := l.addShoppingLocked(n)
	l.mutex.Unlock()
	if err != nil {
		return ShoppingItem{}, err
	}
	l.runHooks(Event{Kind: EventShoppingAdded, ID: si.ID, Timestamp: si.CreatedAt})
	return si, nil
}

func (l *Ledger) addShoppingLocked(n NewShoppingItem) (ShoppingItem, error) {
	if NormalizeName(n.Name) == "" {
		return ShoppingItem{}, fmt.Errorf("%w: shopping item name cannot be empty", ErrInvalidEntry)
	}
	if err := checkQuantity(n.Quantity); err != nil {
		return ShoppingItem{}, err
	}
	base, err := l.normalize(n.Name, n.Quantity, n.Unit, "")
	if err != nil {
		return ShoppingItem{}, err
	}
	si := ShoppingItem{
		ID:              GenerateUUID(),
		Name:            n.Name,
		Category:        n.Category,
		Quantity:        n.Quantity,
		Unit:            n.Unit,
		BaseQuantity:    base.Quantity,
		BaseUnit:        base.Unit,
		IsAutoGenerated: n.IsAutoGenerated,
		CreatedAt:       l.now(),
	}
	l.shopping = append(l.shopping, si)
	l.logs = append(l.logs, "Shopping item "+si.ID+" added")
	return si, nil
}

// UpdateShoppingItem patches a shopping entry, recomputing its base quantity
// when name, quantity or unit change.
func (l *Ledger) UpdateShoppingItem(id string, upd ShoppingUpdate) (ShoppingItem, error) {
	l.mutex.Lock()
	si, err := l.updateShoppingLocked(id, upd)
	l.mutex.Unlock()
	if err != nil {
		return ShoppingItem{}, err
	}
	l.runHooks(Event{Kind: EventShoppingUpdated, ID: si.ID, Timestamp: l.now()})
	return si, nil
}

func (l *Ledger) updateShoppingLocked(id string, upd ShoppingUpdate) (ShoppingItem, error) {
	i := l.shoppingIndexLocked(id)
	if i < 0 {
		return ShoppingItem{}, fmt.Errorf("%w: shopping item %s", ErrNotFound, id)
	}
	si := l.shopping[i]
	if upd.Name != nil {
		if NormalizeName(*upd.Name) == "" {
			return ShoppingItem{}, fmt.Errorf("%w: shopping item name cannot be empty", ErrInvalidEntry)
		}
		si.Name = *upd.Name
	}
	if upd.Category != nil {
		si.Category = *upd.Category
	}
	if upd.Quantity != nil {
		if err := checkQuantity(*upd.Quantity); err != nil {
			return ShoppingItem{}, err
		}
		si.Quantity = *upd.Quantity
	}
	if upd.Unit != nil {
		si.Unit = *upd.Unit
	}
	if upd.IsPurchased != nil {
		si.IsPurchased = *upd.IsPurchased
	}
	if upd.Name != nil || upd.Quantity != nil || upd.Unit != nil {
		base, err := l.normalize(si.Name, si.Quantity, si.Unit, si.BaseUnit)
		if err != nil {
			return ShoppingItem{}, err
		}
		si.BaseQuantity = base.Quantity
		si.BaseUnit = base.Unit
	}
	l.shopping[i] = si
	l.logs = append(l.logs, "Shopping item "+si.ID+" updated")
	return si, nil
}

func (l *Ledger) RemoveShoppingItem(id string) error {
	l.mutex.Lock()
	i := l.shoppingIndexLocked(id)
	if i < 0 {
		l.mutex.Unlock()
		return fmt.Errorf("%w: shopping item %s", ErrNotFound, id)
	}
	l.shopping = append(l.shopping[:i], l.shopping[i+1:]...)
	l.logs = append(l.logs, "Shopping item "+id+" removed")
	l.mutex.Unlock()
	l.runHooks(Event{Kind: EventShoppingRemoved, ID: id, Timestamp: l.now()})
	return nil
}

// ShoppingList returns a copy of the shopping list in insertion order.
func (l *Ledger) ShoppingList() []ShoppingItem {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]ShoppingItem(nil), l.shopping...)
}

func (l *Ledger) shoppingIndexLocked(id string) int {
	for i := range l.shopping {
		if l.shopping[i].ID == id {
			return i
		}
	}
	return -1
}

// MarkAsPurchased moves a shopping entry into stock. An existing item with
// the same name absorbs the purchase, converted into the item's own unit;
// otherwise a new item is created. The entry leaves the shopping list only
// when the stock change succeeded.
func (l *Ledger) MarkAsPurchased(id string) (Item, error) {
	l.mutex.Lock()
	item, err := l.purchaseLocked(id)
	l.mutex.Unlock()
	if err != nil {
		return Item{}, err
	}
	l.runHooks(Event{Kind: EventPurchased, ID: item.ID, Timestamp: item.UpdatedAt})
	return item, nil
}

func (l *Ledger) purchaseLocked(id string) (Item, error) {
	si := l.shoppingIndexLocked(id)
	if si < 0 {
		return Item{}, fmt.Errorf("%w: shopping item %s", ErrNotFound, id)
	}
	entry := l.shopping[si]

	var item Item
	idx, err := l.itemByNameLocked(entry.Name)
	switch {
	case err == nil:
		existing := l.items[idx]
		added, err := l.purchasedInUnit(entry, existing.Unit)
		if err != nil {
			return Item{}, err
		}
		qty := existing.Quantity + added
		item, err = l.updateItemLocked(existing.ID, ItemUpdate{Quantity: &qty})
		if err != nil {
			return Item{}, err
		}
	case errors.Is(err, ErrNotFound):
		item, err = l.addItemLocked(NewItem{
			Name:       entry.Name,
			Category:   entry.Category,
			Quantity:   entry.Quantity,
			Unit:       entry.Unit,
			ExpiryDate: l.now().Add(PurchasedShelfLife),
		})
		if err != nil {
			return Item{}, err
		}
	default:
		return Item{}, err
	}

	si = l.shoppingIndexLocked(id)
	l.shopping = append(l.shopping[:si], l.shopping[si+1:]...)
	l.logs = append(l.logs, "Shopping item "+id+" purchased into "+item.ID)
	return item, nil
}

// purchasedInUnit expresses a shopping entry's quantity in unit.
func (l *Ledger) purchasedInUnit(entry ShoppingItem, unit string) (float64, error) {
	if NormalizeUnit(entry.Unit) == NormalizeUnit(unit) {
		return entry.Quantity, nil
	}
	base, err := l.conv.ToBaseUnit(entry.Name, entry.Quantity, entry.Unit)
	if err != nil {
		return 0, err
	}
	return l.conv.FromBaseUnit(entry.Name, base.Quantity, unit)
}

// restockLocked puts one auto-generated entry on the shopping list for every
// out-of-stock item that has none yet.
func (l *Ledger) restockLocked() {
	for _, item := range l.items {
		if item.Quantity != 0 {
			continue
		}
		name := NormalizeName(item.Name)
		exists := false
		for _, si := range l.shopping {
			if si.IsAutoGenerated && NormalizeName(si.Name) == name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		_, err := l.addShoppingLocked(NewShoppingItem{
			Name:            item.Name,
			Category:        item.Category,
			Quantity:        1,
			Unit:            item.Unit,
			IsAutoGenerated: true,
		})
		if err != nil {
			l.logger.Warn().Err(err).Str("item", item.ID).Msg("could not add restock entry")
		}
	}
}

// Restore replaces the ledger contents with persisted state. Cached base
// fields are trusted as stored.
func (l *Ledger) Restore(items []Item, shopping []ShoppingItem) {
	l.mutex.Lock()
	l.items = append([]Item(nil), items...)
	l.shopping = append([]ShoppingItem(nil), shopping...)
	l.logs = append(l.logs, fmt.Sprintf("Restored %d items, %d shopping entries", len(items), len(shopping)))
	l.restockLocked()
	l.mutex.Unlock()
	l.runHooks(Event{Kind: EventLedgerRestored, Timestamp: l.now()})
}

// GetLogs returns a copy of the activity log.
func (l *Ledger) GetLogs() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string(nil), l.logs...)
}

func (l *Ledger) runHooks(ev Event) {
	l.mutex.Lock()
	hooks := append([]HookFunc(nil), l.hooks...)
	l.mutex.Unlock()
	for _, hook := range hooks {
		if err := hook(ev, l); err != nil {
			l.logger.Error().Err(err).Str("event", string(ev.Kind)).Msg("ledger hook failed")
		}
	}
}

// Stats summarizes the stock.
type Stats struct {
	TotalItems   int `json:"totalItems"`
	OutOfStock   int `json:"outOfStock"`
	Categories   int `json:"categories"`
	ExpiringSoon int `json:"expiringSoon"`
}

func (l *Ledger) Stats() Stats {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	now := l.now()
	categories := make(map[string]struct{})
	st := Stats{TotalItems: len(l.items)}
	for _, item := range l.items {
		if item.Quantity == 0 {
			st.OutOfStock++
		}
		categories[item.Category] = struct{}{}
		if expiresWithin(item, now, ExpiryWarningWindow) {
			st.ExpiringSoon++
		}
	}
	st.Categories = len(categories)
	return st
}

// ExpiringItem is a stock item about to expire.
type ExpiringItem struct {
	Item     Item
	DaysLeft int
}

// ExpiringItems lists items expiring between now and now+window, soonest
// first.
func (l *Ledger) ExpiringItems(window time.Duration) []ExpiringItem {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	now := l.now()
	var out []ExpiringItem
	for _, item := range l.items {
		if expiresWithin(item, now, window) {
			out = append(out, ExpiringItem{Item: item, DaysLeft: DaysUntilExpiry(item.ExpiryDate, now)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.ExpiryDate.Before(out[j].Item.ExpiryDate)
	})
	return out
}

func expiresWithin(item Item, now time.Time, window time.Duration) bool {
	if item.ExpiryDate.IsZero() {
		return false
	}
	return !item.ExpiryDate.Before(now) && !item.ExpiryDate.After(now.Add(window))
}

// DaysUntilExpiry rounds the time left up to whole days.
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// GenerateUUID returns a fresh random identifier.
func GenerateUUID() string {
	return uuid.New().String()
}
