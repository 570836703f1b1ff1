package collection

import (
	"context"
	"fmt"
)

// ChangeKind describes what happened to the collection.
type ChangeKind int

const (
	// Inserted means a record was added.
	Inserted ChangeKind = iota
	// Updated means a record's content was replaced.
	Updated
	// Deleted means a record was removed.
	Deleted
	// LoadStarted means a LoadAll pass began.
	LoadStarted
	// Reloaded means a LoadAll pass finished and may have changed anything.
	Reloaded
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case LoadStarted:
		return "load-started"
	case Reloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is published to subscribers after the in-memory state changes.
// ID is empty for LoadStarted and Reloaded.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Subscribe registers fn for every change. fn runs synchronously on the
// goroutine that made the change, after the collection lock is released,
// so it may read the collection but must not block for long.
func (c *Collection) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Collection) publish(ch Change) {
	c.subMu.Lock()
	fns := make([]func(Change), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// Op names a mutation in notices.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// NoticeKind distinguishes user-facing notices.
type NoticeKind int

const (
	// MutationFailed reports one failed write.
	MutationFailed NoticeKind = iota
	// LoadFailed reports every record that failed in one load pass.
	LoadFailed
)

// Action is a remediation the user can trigger from a notice.
type Action struct {
	Label string
	Run   func(ctx context.Context) error
}

// Notice is a user-facing message, the equivalent of a toast.
type Notice struct {
	Kind    NoticeKind
	Message string
	Op      Op       // MutationFailed
	ID      string   // MutationFailed
	Err     error    // MutationFailed
	Count   int      // LoadFailed
	IDs     []string // LoadFailed
	Action  *Action  // LoadFailed: bulk delete of the invalid records
}

// Notifier receives notices. It is called from background goroutines.
type Notifier func(Notice)

func (c *Collection) raise(n Notice) {
	if c.notify != nil {
		c.notify(n)
	}
}
