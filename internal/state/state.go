// Package state holds client-side record lists as explicit state machines.
//
// A Slice owns the list of one record kind. Every change goes through an
// Action and the pure Reduce function, so the transitions can be tested
// without a server. Async operations (FetchList, Create, ...) call a
// Source and dispatch the resulting actions.
package state

// Status is the lifecycle of a slice's list.
//
//	idle -> loading -> ready | error
//	ready | error -> loading (refetch)
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Keyed is implemented by every record kind.
type Keyed interface {
	Key() string
}

// Snapshot is the immutable view of a slice at one point in time.
type Snapshot[T Keyed] struct {
	Items   []T
	Total   int64
	Loading bool
	Error   string
	Current *T
	Status  Status
}

// ActionType names a state transition.
type ActionType string

const (
	FetchStarted   ActionType = "fetch/started"
	FetchSucceeded ActionType = "fetch/succeeded"
	FetchFailed    ActionType = "fetch/failed"
	ItemLoaded     ActionType = "item/loaded"
	ItemCreated    ActionType = "item/created"
	ItemUpdated    ActionType = "item/updated"
	ItemDeleted    ActionType = "item/deleted"
	MutationFailed ActionType = "mutation/failed"
	ErrorCleared   ActionType = "error/cleared"
	CurrentCleared ActionType = "current/cleared"
)

// Action is one transition request. Only the fields its Type uses are read.
type Action[T Keyed] struct {
	Type  ActionType
	Items []T
	Total int64
	Item  *T
	Key   string
	Err   string
}

// Reduce returns the state after applying a. It never modifies s.
func Reduce[T Keyed](s Snapshot[T], a Action[T]) Snapshot[T] {
	switch a.Type {
	case FetchStarted:
		s.Loading = true
		s.Status = StatusLoading
		s.Error = ""

	case FetchSucceeded:
		s.Items = append([]T(nil), a.Items...)
		s.Total = a.Total
		s.Loading = false
		s.Status = StatusReady
		s.Error = ""

	case FetchFailed:
		s.Loading = false
		s.Status = StatusError
		s.Error = a.Err

	case ItemLoaded:
		if a.Item == nil {
			return s
		}
		item := *a.Item
		s.Current = &item
		s.Items = replace(s.Items, item)
		s.Error = ""

	case ItemCreated:
		if a.Item == nil {
			return s
		}
		item := *a.Item
		s.Items = append([]T{item}, s.Items...)
		s.Total++
		s.Current = &item
		s.Error = ""

	case ItemUpdated:
		if a.Item == nil {
			return s
		}
		item := *a.Item
		s.Items = replace(s.Items, item)
		if s.Current != nil && (*s.Current).Key() == item.Key() {
			s.Current = &item
		}
		s.Error = ""

	case ItemDeleted:
		kept := make([]T, 0, len(s.Items))
		for _, it := range s.Items {
			if it.Key() != a.Key {
				kept = append(kept, it)
			}
		}
		if len(kept) < len(s.Items) && s.Total > 0 {
			s.Total--
		}
		s.Items = kept
		if s.Current != nil && (*s.Current).Key() == a.Key {
			s.Current = nil
		}
		s.Error = ""

	case MutationFailed:
		s.Error = a.Err

	case ErrorCleared:
		s.Error = ""

	case CurrentCleared:
		s.Current = nil
	}
	return s
}

// replace returns a copy of items with the element sharing item's key
// swapped for item. Items without a match are returned unchanged.
func replace[T Keyed](items []T, item T) []T {
	out := append([]T(nil), items...)
	for i := range out {
		if out[i].Key() == item.Key() {
			out[i] = item
			break
		}
	}
	return out
}
