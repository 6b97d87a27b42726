// Package engine turns a scanned tag id into an access decision.
//
// Decide is pure with respect to I/O: it consults the in-memory
// directory snapshot and the presence tracker, never the network.
package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/presence"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// Resolver is the directory lookup the engine decides against.
type Resolver interface {
	Resolve(badgeID string) (types.DirectoryEntry, bool)
}

type Engine struct {
	resolver Resolver
	presence *presence.Tracker
	logger   *log.Logger

	mu         sync.Mutex
	seen       *dailySeen
	denials    map[string]int
	intrusions int

	now func() time.Time
}

func New(resolver Resolver, tracker *presence.Tracker, logger *log.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		presence: tracker,
		logger:   logger,
		seen:     newDailySeen(),
		denials:  make(map[string]int),
		now:      time.Now,
	}
}

// Decide classifies one accepted scan. ok=false means an internal
// fault was contained and the scan dropped; the loop keeps running and
// the operator sees the fault in the log.
func (e *Engine) Decide(tagID string) (ev types.AccessEvent, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("decision fault for tag %s, scan dropped: %v", tagID, r)
			ev, ok = types.AccessEvent{}, false
		}
	}()

	now := e.now()

	entry, found := e.resolver.Resolve(tagID)
	if !found {
		e.mu.Lock()
		e.intrusions++
		e.mu.Unlock()
		return e.event(tagID, "Unknown", types.EventIntrusion, types.ResultDenied, "tag not registered", now), true
	}

	if !entry.Authorized {
		e.mu.Lock()
		e.denials[tagID]++
		e.mu.Unlock()
		return e.event(tagID, entry.Name, types.EventAccessDenied, types.ResultDenied, "collaborator not authorized", now), true
	}

	inside, session := e.presence.Toggle(tagID)
	if inside {
		reason := "return to room"
		e.mu.Lock()
		if e.seen.firstToday(tagID, now) {
			reason = "first entry today"
		}
		e.mu.Unlock()
		return e.event(tagID, entry.Name, types.EventEntry, types.ResultGranted, reason, now), true
	}

	minutes := int(session.Minutes())
	reason := fmt.Sprintf("remained %d minutes", minutes)
	return e.event(tagID, entry.Name, types.EventExit, types.ResultGranted, reason, now), true
}

func (e *Engine) event(badgeID, name string, tp types.EventType, res types.Result, reason string, now time.Time) types.AccessEvent {
	return types.AccessEvent{
		EventID:   newEventID(),
		BadgeID:   badgeID,
		Name:      name,
		Type:      tp,
		Result:    res,
		Reason:    reason,
		Timestamp: now.UTC(),
	}
}

// Intrusions returns the count of scans by unregistered tags.
func (e *Engine) Intrusions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intrusions
}

// Denials returns a copy of the per-badge denied-attempt counters.
func (e *Engine) Denials() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(e.denials))
	for k, v := range e.denials {
		out[k] = v
	}
	return out
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newEventID returns a short unique id the remote sink can use to
// deduplicate re-delivered events.
func newEventID() string {
	id, err := nanoid.Generate(idAlphabet, 10)
	if err != nil {
		// Entropy failure; a timestamp id keeps events distinguishable.
		return fmt.Sprintf("ev-%d", time.Now().UnixNano())
	}
	return "ev-" + id
}
