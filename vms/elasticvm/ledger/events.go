// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/luxfi/ids"
)

type EventType string

const (
	TransferEvent EventType = "transfer"
	ApprovalEvent EventType = "approval"
	BurnEvent     EventType = "burn"
	RebaseEvent   EventType = "rebase"
)

// Event is an accounting record of a committed operation. Fee and burn legs
// of a transfer are reported as separate events.
type Event struct {
	// Index is assigned by the EventLog
	Index uint64
	Type  EventType
	From  ids.ShortID
	To    ids.ShortID
	// Amount is the moved, approved, burned or minted amount
	Amount *uint256.Int
	// Supply is the total supply after a rebase
	Supply *uint256.Int
	Time   time.Time
}

// EventSink receives the events of every committed operation, in order.
type EventSink interface {
	Accept(events ...Event)
}

type noopSink struct{}

func (noopSink) Accept(...Event) {}

var _ EventSink = (*EventLog)(nil)

// EventLog keeps the most recent events in a fixed size ring.
type EventLog struct {
	lock sync.RWMutex
	ring []Event
	// next is the index the next accepted event receives
	next uint64
}

func NewEventLog(size int) *EventLog {
	return &EventLog{
		ring: make([]Event, size),
	}
}

func (l *EventLog) Accept(events ...Event) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, e := range events {
		e.Index = l.next
		l.ring[l.next%uint64(len(l.ring))] = e
		l.next++
	}
}

// Next returns the index the next event will receive.
func (l *EventLog) Next() uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.next
}

// Since returns up to limit retained events with an index >= start. Events
// that have been overwritten are skipped.
func (l *EventLog) Since(start uint64, limit int) []Event {
	l.lock.RLock()
	defer l.lock.RUnlock()

	size := uint64(len(l.ring))
	if l.next > size && start < l.next-size {
		start = l.next - size
	}
	if start >= l.next || limit <= 0 {
		return nil
	}

	end := min(l.next, start+uint64(limit))
	events := make([]Event, 0, end-start)
	for i := start; i < end; i++ {
		events = append(events, l.ring[i%size])
	}
	return events
}
