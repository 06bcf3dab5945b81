package state

import (
	"context"
	"net/url"
	"sync"

	"github.com/dalemusser/chinavoyage/internal/client"
)

// Source is the server side of a slice. The client's Resource and
// Processable types implement it.
type Source[T any] interface {
	List(ctx context.Context, query url.Values) ([]T, int64, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, input any) (*T, error)
	Update(ctx context.Context, id string, patch any) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Slice holds the state of one record kind and notifies subscribers on
// every change. It is safe for concurrent use.
type Slice[T Keyed] struct {
	source Source[T]

	mu     sync.Mutex
	state  Snapshot[T]
	subs   map[int]func(Snapshot[T])
	nextID int
}

// New creates an idle slice over source.
func New[T Keyed](source Source[T]) *Slice[T] {
	return &Slice[T]{
		source: source,
		state:  Snapshot[T]{Status: StatusIdle},
		subs:   map[int]func(Snapshot[T]){},
	}
}

// Snapshot returns the current state.
func (s *Slice[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every new state. The returned
// function removes the subscription.
func (s *Slice[T]) Subscribe(fn func(Snapshot[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies a and notifies subscribers. Subscribers run after the
// lock is released and may read the slice.
func (s *Slice[T]) Dispatch(a Action[T]) Snapshot[T] {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// FetchList loads the list: loading, then ready with the page or error.
func (s *Slice[T]) FetchList(ctx context.Context, query url.Values) error {
	s.Dispatch(Action[T]{Type: FetchStarted})
	items, total, err := s.source.List(ctx, query)
	if err != nil {
		s.Dispatch(Action[T]{Type: FetchFailed, Err: client.MessageOf(err)})
		return err
	}
	s.Dispatch(Action[T]{Type: FetchSucceeded, Items: items, Total: total})
	return nil
}

// FetchByID loads one record as Current.
func (s *Slice[T]) FetchByID(ctx context.Context, id string) (*T, error) {
	item, err := s.source.Get(ctx, id)
	if err != nil {
		s.Dispatch(Action[T]{Type: MutationFailed, Err: client.MessageOf(err)})
		return nil, err
	}
	s.Dispatch(Action[T]{Type: ItemLoaded, Item: item})
	return item, nil
}

// Create adds a record once the server has stored it.
func (s *Slice[T]) Create(ctx context.Context, input any) (*T, error) {
	item, err := s.source.Create(ctx, input)
	if err != nil {
		s.Dispatch(Action[T]{Type: MutationFailed, Err: client.MessageOf(err)})
		return nil, err
	}
	s.Dispatch(Action[T]{Type: ItemCreated, Item: item})
	return item, nil
}

// Update replaces a record with the server's merged version.
func (s *Slice[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	item, err := s.source.Update(ctx, id, patch)
	if err != nil {
		s.Dispatch(Action[T]{Type: MutationFailed, Err: client.MessageOf(err)})
		return nil, err
	}
	s.Dispatch(Action[T]{Type: ItemUpdated, Item: item})
	return item, nil
}

// Delete removes a record once the server confirms.
func (s *Slice[T]) Delete(ctx context.Context, id string) error {
	if err := s.source.Delete(ctx, id); err != nil {
		s.Dispatch(Action[T]{Type: MutationFailed, Err: client.MessageOf(err)})
		return err
	}
	s.Dispatch(Action[T]{Type: ItemDeleted, Key: id})
	return nil
}

// Processor is a Source whose records can be marked processed.
type Processor[T any] interface {
	Process(ctx context.Context, id string) (*T, error)
}

// Process marks a record processed through p and stores the result.
func (s *Slice[T]) Process(ctx context.Context, p Processor[T], id string) (*T, error) {
	item, err := p.Process(ctx, id)
	if err != nil {
		s.Dispatch(Action[T]{Type: MutationFailed, Err: client.MessageOf(err)})
		return nil, err
	}
	s.Dispatch(Action[T]{Type: ItemUpdated, Item: item})
	return item, nil
}
