// Package livequery is the live subscription fan-out: viewers register
// a query predicate and receive the full current match set on every
// write that touches the predicate's tenant. Emissions are wholesale
// snapshot replacements, never deltas.
package livequery

import (
	"sync"

	"table-order-api/models"

	"github.com/rs/zerolog/log"
)

// Query is a subscription predicate. TableNo and Status are optional
// narrowing filters; RestaurantID always scopes the match set.
type Query struct {
	RestaurantID uint
	TableNo      *int
	Status       *models.OrderStatus
}

// Loader fetches the full current match set for a query, sorted
// newest-first (created_at desc, id desc).
type Loader func(q Query) ([]models.Order, error)

// Bus is the process-wide hub, wired to the database in main
var Bus *Hub

// Init installs the process-wide hub
func Init(load Loader) {
	Bus = NewHub(load)
}

// Hub fans live query snapshots out to subscribers.
type Hub struct {
	mu   sync.Mutex
	load Loader
	subs map[*Subscription]struct{}
}

func NewHub(load Loader) *Hub {
	return &Hub{load: load, subs: make(map[*Subscription]struct{})}
}

// Subscription delivers snapshots on C until Close. A slow consumer
// sees the latest snapshot; intermediate ones may be coalesced away.
type Subscription struct {
	C     <-chan []models.Order
	ch    chan []models.Order
	query Query
	hub   *Hub

	mu     sync.Mutex
	closed bool
}

// Subscribe registers a predicate and immediately delivers the current
// match set as the first emission.
func (h *Hub) Subscribe(q Query) (*Subscription, error) {
	snapshot, err := h.load(q)
	if err != nil {
		return nil, err
	}

	ch := make(chan []models.Order, 1)
	s := &Subscription{C: ch, ch: ch, query: q, hub: h}
	ch <- snapshot

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s, nil
}

// Close releases the subscription. Safe to call more than once; the
// channel closes exactly once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.hub.mu.Lock()
	delete(s.hub.subs, s)
	s.hub.mu.Unlock()
}

// push coalesces: if the consumer has not drained the previous
// snapshot, it is replaced by the newer one.
func (s *Subscription) push(snapshot []models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snapshot:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Broadcast re-runs every subscription scoped to the tenant and pushes
// the fresh snapshot. Callers invoke it after any order write; the
// consuming view replaces its local state wholesale per emission.
func (h *Hub) Broadcast(restaurantID uint) {
	for _, s := range h.tenantSubs(restaurantID) {
		snapshot, err := h.load(s.query)
		if err != nil {
			log.Error().Err(err).Uint("restaurant_id", restaurantID).Msg("live query reload failed, skipping emission")
			continue
		}
		s.push(snapshot)
	}
}

// CloseTenant drops every subscription of one tenant. Used when a
// restaurant is blocked: all of its live viewers terminate on next
// observation and no further snapshot reaches them.
func (h *Hub) CloseTenant(restaurantID uint) {
	for _, s := range h.tenantSubs(restaurantID) {
		s.Close()
	}
}

func (h *Hub) tenantSubs(restaurantID uint) []*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	var matched []*Subscription
	for s := range h.subs {
		if s.query.RestaurantID == restaurantID {
			matched = append(matched, s)
		}
	}
	return matched
}
