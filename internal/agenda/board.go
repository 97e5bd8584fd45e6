// Package agenda keeps the events of one calendar view in memory and applies
// drag, resize and status gestures to them. A gesture only changes the cached
// event once the scheduler has persisted it.
package agenda

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUnknownEvent = errors.New("event is not on the board")

// Scheduler is the subset of service.AppointmentService the board drives.
type Scheduler interface {
	ListEvents(ctx context.Context, window *appointment.Window) ([]appointment.Event, error)
	Move(ctx context.Context, id uuid.UUID, newStart time.Time) (*service.MoveResult, error)
	Resize(ctx context.Context, id uuid.UUID, newStart, newEnd time.Time) (*service.ResizeResult, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*appointment.Event, error)
}

type Board struct {
	scheduler Scheduler
	log       *zap.Logger

	mu     sync.RWMutex
	events []appointment.Event
	index  map[uuid.UUID]int
}

func NewBoard(scheduler Scheduler, log *zap.Logger) *Board {
	return &Board{scheduler: scheduler, log: log, index: map[uuid.UUID]int{}}
}

// Load replaces the board's contents with the events inside window (all
// events when window is nil). On failure the previous contents stay.
func (b *Board) Load(ctx context.Context, window *appointment.Window) error {
	events, err := b.scheduler.ListEvents(ctx, window)
	if err != nil {
		return err
	}

	index := make(map[uuid.UUID]int, len(events))
	for i, ev := range events {
		index[ev.ID] = i
	}

	b.mu.Lock()
	b.events, b.index = events, index
	b.mu.Unlock()
	return nil
}

// Events returns a copy of the cached events in start order.
func (b *Board) Events() []appointment.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]appointment.Event, len(b.events))
	copy(out, b.events)
	return out
}

func (b *Board) Event(id uuid.UUID) (appointment.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[id]
	if !ok {
		return appointment.Event{}, false
	}
	return b.events[i], true
}

// Move drags the event to newStart, keeping its length.
func (b *Board) Move(ctx context.Context, id uuid.UUID, newStart time.Time) (appointment.Event, error) {
	if _, ok := b.Event(id); !ok {
		return appointment.Event{}, ErrUnknownEvent
	}
	res, err := b.scheduler.Move(ctx, id, newStart)
	if err != nil {
		b.reverted("move", id, err)
		return appointment.Event{}, err
	}
	return b.replace(id, func(ev appointment.Event) appointment.Event { return ev.Moved(res.Start) })
}

// Resize stretches the event to [newStart, newEnd).
func (b *Board) Resize(ctx context.Context, id uuid.UUID, newStart, newEnd time.Time) (appointment.Event, error) {
	if _, ok := b.Event(id); !ok {
		return appointment.Event{}, ErrUnknownEvent
	}
	res, err := b.scheduler.Resize(ctx, id, newStart, newEnd)
	if err != nil {
		b.reverted("resize", id, err)
		return appointment.Event{}, err
	}
	return b.replace(id, func(ev appointment.Event) appointment.Event { return ev.Resized(res.Start, res.Duration) })
}

func (b *Board) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (appointment.Event, error) {
	if _, ok := b.Event(id); !ok {
		return appointment.Event{}, ErrUnknownEvent
	}
	updated, err := b.scheduler.ChangeStatus(ctx, id, status)
	if err != nil {
		b.reverted("status", id, err)
		return appointment.Event{}, err
	}
	return b.replace(id, func(ev appointment.Event) appointment.Event { return ev.WithStatus(updated.Props.Status) })
}

// replace applies fn to the cached event. The event may have been dropped by a
// concurrent Load, in which case nothing is cached.
func (b *Board) replace(id uuid.UUID, fn func(appointment.Event) appointment.Event) (appointment.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return appointment.Event{}, ErrUnknownEvent
	}
	b.events[i] = fn(b.events[i])
	return b.events[i], nil
}

func (b *Board) reverted(gesture string, id uuid.UUID, err error) {
	b.log.Warn("gesture not saved, event reverted",
		zap.String("gesture", gesture),
		zap.String("appointment_id", id.String()),
		zap.Error(err),
	)
}
