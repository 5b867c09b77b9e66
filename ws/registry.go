package ws

import (
	"errors"
	"log"
	"sync"

	"farm-hub/entities"
)

var ErrUnitAttached = errors.New("field unit already attached to an owner")

type ownerEntry struct {
	espIDs map[string]struct{}
	conn   *Peer
}

type unitEntry struct {
	conn           *Peer
	thresholdsSent bool
}

// Registry is the sole authority on which connection currently represents an
// owner or a field unit, and on which owner each field unit belongs to. All
// methods hold one mutex; the cardinality of owners and units is small
// enough that a single lock is the whole concurrency story.
type Registry struct {
	mu     sync.Mutex
	owners map[string]*ownerEntry // uid -> entry
	units  map[string]*unitEntry  // espID -> entry
	byUnit map[string]string      // espID -> owning uid
}

func NewRegistry() *Registry {
	return &Registry{
		owners: make(map[string]*ownerEntry),
		units:  make(map[string]*unitEntry),
		byUnit: make(map[string]string),
	}
}

// Load bulk-initializes ownership from the durable owner tree. Runs once at
// startup; an empty tree yields an empty registry, not an error.
func (r *Registry) Load(owners []entities.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range owners {
		entry := r.ownerEntryLocked(o.UID)
		for _, z := range o.Zones {
			for _, sz := range z.Subzones {
				if sz.EspID == "" {
					continue
				}
				entry.espIDs[sz.EspID] = struct{}{}
				r.byUnit[sz.EspID] = o.UID
			}
		}
	}
	log.Printf("registry loaded: %d owners, %d field units", len(r.owners), len(r.byUnit))
}

func (r *Registry) ownerEntryLocked(uid string) *ownerEntry {
	entry, ok := r.owners[uid]
	if !ok {
		entry = &ownerEntry{espIDs: make(map[string]struct{})}
		r.owners[uid] = entry
	}
	return entry
}

// RegisterOwnerConnection attaches a live connection to a known owner. An
// unknown uid is a warned no-op so a provisioning race cannot kill the
// session outright.
func (r *Registry) RegisterOwnerConnection(uid string, conn *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.owners[uid]
	if !ok {
		log.Printf("registry: REGISTER for unknown owner %q ignored", uid)
		return
	}
	entry.conn = conn
}

// AttachFieldUnit adds espID to the owner's set. Idempotent for the same
// owner; refuses to double-attach across owners even if the provisioning
// layer forgot its own check.
func (r *Registry) AttachFieldUnit(uid, espID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.byUnit[espID]; ok {
		if current == uid {
			return nil
		}
		return ErrUnitAttached
	}
	entry := r.ownerEntryLocked(uid)
	entry.espIDs[espID] = struct{}{}
	r.byUnit[espID] = uid
	return nil
}

// DetachFieldUnit removes espID from the owner's set; used on subzone
// deletion.
func (r *Registry) DetachFieldUnit(uid, espID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.owners[uid]; ok {
		delete(entry.espIDs, espID)
	}
	if r.byUnit[espID] == uid {
		delete(r.byUnit, espID)
	}
}

// ResolveOwnerOf returns the uid owning a field unit, or "" when unowned.
func (r *Registry) ResolveOwnerOf(espID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.byUnit[espID]
	return uid, ok
}

// RegisterFieldUnitConnection stores the live connection for a field unit
// and returns its owner for routing. Last writer wins when a second
// connection claims the same espID; the previous socket is closed. When no
// owner is known the connection is not stored and the caller drops the
// message.
func (r *Registry) RegisterFieldUnitConnection(espID string, conn *Peer) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.byUnit[espID]
	if !ok {
		return "", false
	}
	entry, ok := r.units[espID]
	if !ok {
		entry = &unitEntry{}
		r.units[espID] = entry
	}
	if entry.conn != nil && entry.conn != conn {
		_ = entry.conn.Close()
		entry.thresholdsSent = false
	}
	entry.conn = conn
	return uid, true
}

// OwnerConn returns the owner's live connection, nil when absent.
func (r *Registry) OwnerConn(uid string) *Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.owners[uid]; ok {
		return entry.conn
	}
	return nil
}

// UnitConn returns the live connection of a field unit owned by uid. The
// second result is false when the unit is not owned by uid or has no live
// connection.
func (r *Registry) UnitConn(uid, espID string) (*Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUnit[espID] != uid {
		return nil, false
	}
	entry, ok := r.units[espID]
	if !ok || entry.conn == nil {
		return nil, false
	}
	return entry.conn, true
}

// NeedsThresholds reports whether the one-shot THRESHOLDS announcement is
// still owed to the unit's current connection.
func (r *Registry) NeedsThresholds(espID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.units[espID]
	return ok && !entry.thresholdsSent
}

// MarkThresholdsSent latches the announcement flag until reconnect.
func (r *Registry) MarkThresholdsSent(espID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.units[espID]; ok {
		entry.thresholdsSent = true
	}
}

// OnConnectionClosed clears every reference to a closed connection, owner
// slot and unit slots alike, and resets the thresholds-sent flag so a
// reconnecting unit is announced again. Idempotent.
func (r *Registry) OnConnectionClosed(conn *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, entry := range r.owners {
		if entry.conn == conn {
			entry.conn = nil
			log.Printf("registry: owner %s disconnected", uid)
		}
	}
	for espID, entry := range r.units {
		if entry.conn == conn {
			entry.conn = nil
			entry.thresholdsSent = false
			log.Printf("registry: field unit %s disconnected", espID)
		}
	}
}

// ConnectedUnits lists field units with a live connection.
func (r *Registry) ConnectedUnits() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.units))
	for espID, entry := range r.units {
		if entry.conn != nil {
			ids = append(ids, espID)
		}
	}
	return ids
}
