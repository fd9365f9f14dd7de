package order

import (
	"time"

	"orders/internal/core/domain/model/kernel"
)

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	id        kernel.UUID
	status    Status
	note      string
	actorID   kernel.UUID
	actorRole kernel.Role
	createdAt time.Time
}

func newHistoryEntry(status Status, note string, actor kernel.Actor, now time.Time) HistoryEntry {
	return HistoryEntry{
		id:        kernel.NewUUID(),
		status:    status,
		note:      note,
		actorID:   actor.ID(),
		actorRole: actor.Role(),
		createdAt: now,
	}
}

// RestoreHistoryEntry rebuilds a stored entry. actorID may be zero for guests and jobs.
func RestoreHistoryEntry(
	id kernel.UUID,
	status Status,
	note string,
	actorID kernel.UUID,
	actorRole kernel.Role,
	createdAt time.Time,
) HistoryEntry {
	return HistoryEntry{id: id, status: status, note: note, actorID: actorID, actorRole: actorRole, createdAt: createdAt}
}

func (h HistoryEntry) ID() kernel.UUID        { return h.id }
func (h HistoryEntry) Status() Status         { return h.status }
func (h HistoryEntry) Note() string           { return h.note }
func (h HistoryEntry) ActorID() kernel.UUID   { return h.actorID }
func (h HistoryEntry) ActorRole() kernel.Role { return h.actorRole }
func (h HistoryEntry) CreatedAt() time.Time   { return h.createdAt }
