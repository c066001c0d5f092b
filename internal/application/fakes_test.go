package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
	promoDomain "github.com/arena-tix/service-booking/internal/domain/promo"
	reservationDomain "github.com/arena-tix/service-booking/internal/domain/reservation"
)

// memStore is an in-memory reservation.Store that grants the same locks the
// real store does, and nothing more: SoldQuantity takes a per-(show, region)
// row lock held to transaction end, promo consumption and reservation updates
// are conditional writes guarded by per-row locks, and plain reads such as
// FindByAccessCode see committed state without locking. Writes stage until
// the closure returns nil; a failed closure leaves no trace.
type memStore struct {
	mu             sync.Mutex
	reservations   map[uuid.UUID]*reservationDomain.Reservation
	promos         map[string]*promoDomain.PromoCode
	promoFindCalls int

	rowLocks sync.Map

	// beforeReservationUpdate runs inside a transaction after its reads and
	// before its reservation write, so tests can commit a competing
	// transaction in that window.
	beforeReservationUpdate func()
}

func newMemStore() *memStore {
	return &memStore{
		reservations: make(map[uuid.UUID]*reservationDomain.Reservation),
		promos:       make(map[string]*promoDomain.PromoCode),
	}
}

func (s *memStore) InTx(_ context.Context, fn func(tx reservationDomain.Tx) error) error {
	tx := &memTx{
		store:    s,
		resStage: make(map[uuid.UUID]*reservationDomain.Reservation),
		prmStage: make(map[string]*promoDomain.PromoCode),
		heldKeys: make(map[string]bool),
	}
	err := fn(tx)
	if err == nil {
		s.mu.Lock()
		for id, r := range tx.resStage {
			s.reservations[id] = r
		}
		for code, p := range tx.prmStage {
			s.promos[code] = p
		}
		s.mu.Unlock()
	}
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	return err
}

func (s *memStore) seedPromo(code string, pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promos[code] = promoDomain.Reconstruct(
		uuid.New(), code, promoDomain.StatusUnused, pct, nil, nil, nil, time.Now().UTC(),
	)
}

func (s *memStore) seedUsedPromo(code string, pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usedBy := uuid.New()
	usedAt := time.Now().UTC()
	s.promos[code] = promoDomain.Reconstruct(
		uuid.New(), code, promoDomain.StatusUsed, pct, &usedBy, &usedAt, nil, usedAt,
	)
}

func (s *memStore) committedReservation(id uuid.UUID) *reservationDomain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id]
}

func (s *memStore) activeQty(showID, regionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.reservations {
		total += activeItemQty(r, showID, regionID, nil)
	}
	return total
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// cloneReservation deep-copies a committed aggregate so each transaction
// works on its own snapshot, the way a SQL read does.
func cloneReservation(r *reservationDomain.Reservation) *reservationDomain.Reservation {
	items := make([]reservationDomain.Item, len(r.Items()))
	copy(items, r.Items())
	return reservationDomain.Reconstruct(
		r.ID(), r.AccessCode(), r.ShowID(), r.Status(),
		r.FullName(), r.Email(), r.TotalRsd(),
		r.CurrencyCode(), r.FxRateUsed(), r.TotalInCurrency(), r.PromoCodeUsed(),
		items, r.CreatedAt(), r.UpdatedAt(),
	)
}

func activeItemQty(r *reservationDomain.Reservation, showID, regionID uuid.UUID, excludeID *uuid.UUID) int {
	if r.Status() != reservationDomain.StatusActive || r.ShowID() != showID {
		return 0
	}
	if excludeID != nil && r.ID() == *excludeID {
		return 0
	}
	total := 0
	for _, it := range r.Items() {
		if it.RegionID == regionID {
			total += it.Qty
		}
	}
	return total
}

// memTx stages writes until the closure returns nil. Row locks taken along
// the way are held until the transaction ends.
type memTx struct {
	store    *memStore
	resStage map[uuid.UUID]*reservationDomain.Reservation
	prmStage map[string]*promoDomain.PromoCode
	held     []*sync.Mutex
	heldKeys map[string]bool
}

func (t *memTx) Reservations() reservationDomain.Repository { return &memTxReservations{tx: t} }
func (t *memTx) Promos() promoDomain.Repository             { return &memTxPromos{tx: t} }

// lockRow blocks until this transaction holds the named row lock. Re-locking
// a key the transaction already holds is a no-op.
func (t *memTx) lockRow(key string) {
	if t.heldKeys[key] {
		return
	}
	v, _ := t.store.rowLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	t.heldKeys[key] = true
	t.held = append(t.held, mu)
}

func (t *memTx) reservation(accessCode, email string) *reservationDomain.Reservation {
	for _, r := range t.resStage {
		if r.AccessCode() == accessCode && r.Email() == email {
			return r
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, r := range t.store.reservations {
		if r.AccessCode() == accessCode && r.Email() == email {
			return cloneReservation(r)
		}
	}
	return nil
}

func (t *memTx) promo(code string) *promoDomain.PromoCode {
	if p, ok := t.prmStage[code]; ok {
		return p
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.promos[code]
}

type memTxReservations struct{ tx *memTx }

func (r *memTxReservations) Save(_ context.Context, res *reservationDomain.Reservation) error {
	r.tx.resStage[res.ID()] = res
	return nil
}

// Update mirrors the conditional write of the real repository: it only
// applies while the committed row is still ACTIVE, otherwise Conflict.
func (r *memTxReservations) Update(_ context.Context, res *reservationDomain.Reservation) error {
	if hook := r.tx.store.beforeReservationUpdate; hook != nil {
		hook()
	}
	r.tx.lockRow("reservation:" + res.ID().String())
	if _, createdHere := r.tx.resStage[res.ID()]; !createdHere {
		committed := r.tx.store.committedReservation(res.ID())
		if committed == nil || committed.Status() != reservationDomain.StatusActive {
			return domain.NewConflictError("reservation %s is no longer active", res.AccessCode())
		}
	}
	r.tx.resStage[res.ID()] = res
	return nil
}

func (r *memTxReservations) FindByAccessCode(_ context.Context, accessCode, email string) (*reservationDomain.Reservation, error) {
	if res := r.tx.reservation(accessCode, email); res != nil {
		return res, nil
	}
	return nil, domain.NewNotFoundError("reservation", accessCode)
}

// SoldQuantity takes the per-pair admission lock before summing, like the
// FOR UPDATE lock on the price row.
func (r *memTxReservations) SoldQuantity(_ context.Context, showID, regionID uuid.UUID, excludeReservationID *uuid.UUID) (int, error) {
	r.tx.lockRow("price:" + showID.String() + "|" + regionID.String())

	total := 0
	r.tx.store.mu.Lock()
	for id, res := range r.tx.store.reservations {
		if _, staged := r.tx.resStage[id]; staged {
			continue
		}
		total += activeItemQty(res, showID, regionID, excludeReservationID)
	}
	r.tx.store.mu.Unlock()
	for _, res := range r.tx.resStage {
		total += activeItemQty(res, showID, regionID, excludeReservationID)
	}
	return total, nil
}

type memTxPromos struct{ tx *memTx }

func (p *memTxPromos) FindByCode(_ context.Context, code string) (*promoDomain.PromoCode, error) {
	if found := p.tx.promo(code); found != nil {
		return found, nil
	}
	return nil, domain.NewNotFoundError("promo code", code)
}

// Consume locks the code's row, then applies the UNUSED check against
// committed state, matching the conditional update.
func (p *memTxPromos) Consume(_ context.Context, code string, reservationID uuid.UUID, at time.Time) error {
	p.tx.lockRow("promo:" + code)
	current := p.tx.promo(code)
	if current == nil || !current.IsRedeemable() {
		return domain.NewPromoInvalidError("promo code is missing or already used")
	}
	p.tx.prmStage[code] = promoDomain.Reconstruct(
		current.ID(), current.Code(), promoDomain.StatusUsed, current.DiscountPct(),
		&reservationID, &at, current.IssuedByReservationID(), current.CreatedAt(),
	)
	return nil
}

func (p *memTxPromos) Save(_ context.Context, pc *promoDomain.PromoCode) error {
	p.tx.prmStage[pc.Code()] = pc
	return nil
}

// memReservationReads is the non-transactional reservation read handle.
type memReservationReads struct{ store *memStore }

func (r *memReservationReads) Save(context.Context, *reservationDomain.Reservation) error {
	return fmt.Errorf("writes require a transaction")
}

func (r *memReservationReads) Update(context.Context, *reservationDomain.Reservation) error {
	return fmt.Errorf("writes require a transaction")
}

func (r *memReservationReads) FindByAccessCode(_ context.Context, accessCode, email string) (*reservationDomain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, res := range r.store.reservations {
		if res.AccessCode() == accessCode && res.Email() == email {
			return cloneReservation(res), nil
		}
	}
	return nil, domain.NewNotFoundError("reservation", accessCode)
}

func (r *memReservationReads) SoldQuantity(_ context.Context, showID, regionID uuid.UUID, excludeReservationID *uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	total := 0
	for _, res := range r.store.reservations {
		total += activeItemQty(res, showID, regionID, excludeReservationID)
	}
	return total, nil
}

// memPromoReads is the non-transactional promo read handle. It counts
// FindByCode calls so tests can assert that malformed codes never reach it.
type memPromoReads struct{ store *memStore }

func (p *memPromoReads) FindByCode(_ context.Context, code string) (*promoDomain.PromoCode, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.promoFindCalls++
	if found, ok := p.store.promos[code]; ok {
		return found, nil
	}
	return nil, domain.NewNotFoundError("promo code", code)
}

func (p *memPromoReads) Consume(context.Context, string, uuid.UUID, time.Time) error {
	return fmt.Errorf("writes require a transaction")
}

func (p *memPromoReads) Save(context.Context, *promoDomain.PromoCode) error {
	return fmt.Errorf("writes require a transaction")
}

// fakeCatalog is an in-memory catalog.Reader.
type fakeCatalog struct {
	shows      map[uuid.UUID]*catalog.Show
	regions    map[uuid.UUID]*catalog.SeatingRegion
	prices     map[string]*catalog.ShowPrice
	settings   catalog.Settings
	currencies []catalog.Currency
	listings   []catalog.ShowListing
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		shows:   make(map[uuid.UUID]*catalog.Show),
		regions: make(map[uuid.UUID]*catalog.SeatingRegion),
		prices:  make(map[string]*catalog.ShowPrice),
	}
}

func priceKey(showID, regionID uuid.UUID) string {
	return showID.String() + "|" + regionID.String()
}

func (c *fakeCatalog) GetShow(_ context.Context, id uuid.UUID) (*catalog.Show, error) {
	if s, ok := c.shows[id]; ok {
		return s, nil
	}
	return nil, domain.NewNotFoundError("show", id.String())
}

func (c *fakeCatalog) GetRegion(_ context.Context, id uuid.UUID) (*catalog.SeatingRegion, error) {
	if r, ok := c.regions[id]; ok {
		return r, nil
	}
	return nil, domain.NewNotFoundError("seating region", id.String())
}

func (c *fakeCatalog) GetShowPrice(_ context.Context, showID, regionID uuid.UUID) (*catalog.ShowPrice, error) {
	if p, ok := c.prices[priceKey(showID, regionID)]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("show price", priceKey(showID, regionID))
}

func (c *fakeCatalog) GetSettings(context.Context) (*catalog.Settings, error) {
	s := c.settings
	return &s, nil
}

func (c *fakeCatalog) EnabledCurrencies(context.Context) ([]catalog.Currency, error) {
	return c.currencies, nil
}

func (c *fakeCatalog) ListShows(context.Context) ([]catalog.ShowListing, error) {
	return c.listings, nil
}

// stubRates is a canned RateProvider.
type stubRates struct {
	rates map[string]float64
	err   error
	calls int
}

func (s *stubRates) GetRate(_ context.Context, from, to string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if rate, ok := s.rates[from+"->"+to]; ok {
		return rate, nil
	}
	return 0, domain.NewRateUnavailableError(fmt.Errorf("no canned rate for %s->%s", from, to))
}

type publishedEvent struct {
	Type string
	Key  string
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key})
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
