// events.go defines record events delivered to extensions.
//
// Events are fire-and-forget notifications, not approval requests. They
// are raised after the in-memory collection changes, which may be before
// the write reaches disk. Extensions cannot block or veto operations.

package extension

import (
	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/logging"
)

// EventType identifies the kind of event.
type EventType string

const (
	EventRecordInsert EventType = "record:insert"
	EventRecordUpdate EventType = "record:update"
	EventRecordDelete EventType = "record:delete"
	EventReload       EventType = "collection:reload"
)

// Event is one change to the record collection. ID is empty for reloads.
type Event struct {
	Type EventType
	ID   string
}

// EventHandler is implemented by extensions that want to receive events.
type EventHandler interface {
	HandleEvent(ctx Context, e Event) error
}

// EventFromChange maps a collection change to an extension event. Load
// start has no event: handlers see the completed reload only.
func EventFromChange(ch collection.Change) (Event, bool) {
	switch ch.Kind {
	case collection.Inserted:
		return Event{Type: EventRecordInsert, ID: ch.ID}, true
	case collection.Updated:
		return Event{Type: EventRecordUpdate, ID: ch.ID}, true
	case collection.Deleted:
		return Event{Type: EventRecordDelete, ID: ch.ID}, true
	case collection.Reloaded:
		return Event{Type: EventReload}, true
	default:
		return Event{}, false
	}
}

// Dispatch delivers e to every registered extension implementing
// EventHandler. Handler errors are logged and do not stop delivery.
func Dispatch(ctx Context, e Event) {
	for _, ext := range All() {
		h, ok := ext.(EventHandler)
		if !ok {
			continue
		}
		if err := h.HandleEvent(ctx, e); err != nil {
			logging.Warn().Err(err).Str("extension", ext.Name()).Str("event", string(e.Type)).Msg("event handler failed")
		}
	}
}
