// Package session holds the process-wide identity and selection state.
//
// The Store is the single owner of that state. Every transition replaces the
// current Snapshot with a new one; a Snapshot handed out is never mutated
// afterwards, so readers can keep it without locking.
package session

import (
	"slices"
	"sync"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

// Snapshot is an immutable view of the session
type Snapshot struct {
	Token          string
	User           *types.User
	Workspaces     []types.Workspace
	WorkspaceID    string
	ConversationID string
	MainThreadID   string
	QuickThreadID  string
}

// Authenticated reports whether a bearer token is present
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// ThreadID returns the selected thread of the given kind
func (s Snapshot) ThreadID(kind types.ThreadKind) string {
	switch kind {
	case types.ThreadMain:
		return s.MainThreadID
	case types.ThreadQuick:
		return s.QuickThreadID
	default:
		return ""
	}
}

// clone copies the reference-typed fields so the result shares nothing with s
func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := cloneUser(*s.User)
		s.User = &u
	}
	s.Workspaces = slices.Clone(s.Workspaces)
	return s
}

func cloneUser(u types.User) types.User {
	if u.DisplayName != nil {
		name := *u.DisplayName
		u.DisplayName = &name
	}
	return u
}

// Listener observes committed snapshots
type Listener func(Snapshot)

// Store is the single owner of the session state
type Store struct {
	mu        sync.Mutex
	snap      Snapshot
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store starting at initial
func NewStore(initial Snapshot) *Store {
	return &Store{
		snap:      initial.clone(),
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to be called after every transition. The returned
// function removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// apply commits next(current) and notifies listeners outside the lock
func (s *Store) apply(next func(Snapshot) Snapshot) Snapshot {
	s.mu.Lock()
	snap := next(s.snap.clone())
	s.snap = snap
	listeners := make([]Listener, 0, len(s.listeners))
	for _, id := range s.listenerIDs() {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// listenerIDs returns ids in registration order
func (s *Store) listenerIDs() []int {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SetAuth stores the credential and user of a successful login or register
func (s *Store) SetAuth(auth types.AuthResponse) Snapshot {
	return s.apply(func(snap Snapshot) Snapshot {
		user := cloneUser(auth.User)
		snap.Token = auth.Token.AccessToken
		snap.User = &user
		return snap
	})
}

// SetWorkspaces replaces the workspace list. The current selection is kept
// when it is still listed; otherwise the first workspace is selected, or none.
func (s *Store) SetWorkspaces(workspaces []types.Workspace) Snapshot {
	return s.apply(func(snap Snapshot) Snapshot {
		snap.Workspaces = slices.Clone(workspaces)

		listed := slices.ContainsFunc(workspaces, func(w types.Workspace) bool {
			return w.ID == snap.WorkspaceID
		})
		if snap.WorkspaceID != "" && listed {
			return snap
		}

		id := ""
		if len(workspaces) > 0 {
			id = workspaces[0].ID
		}
		if id != snap.WorkspaceID {
			snap = selectWorkspace(snap, id)
		}
		return snap
	})
}

// SelectWorkspace selects id and clears the conversation and thread selection
func (s *Store) SelectWorkspace(id string) Snapshot {
	return s.apply(func(snap Snapshot) Snapshot {
		return selectWorkspace(snap, id)
	})
}

func selectWorkspace(snap Snapshot, id string) Snapshot {
	snap.WorkspaceID = id
	snap.ConversationID = ""
	snap.MainThreadID = ""
	snap.QuickThreadID = ""
	return snap
}

// SelectConversation selects id and clears the thread selection
func (s *Store) SelectConversation(id string) Snapshot {
	return s.apply(func(snap Snapshot) Snapshot {
		snap.ConversationID = id
		snap.MainThreadID = ""
		snap.QuickThreadID = ""
		return snap
	})
}

// SetThreads selects the main and quick thread ids; empty clears one
func (s *Store) SetThreads(mainID, quickID string) Snapshot {
	return s.apply(func(snap Snapshot) Snapshot {
		snap.MainThreadID = mainID
		snap.QuickThreadID = quickID
		return snap
	})
}

// ApplyThreads selects the first thread of each kind from a conversation's threads
func (s *Store) ApplyThreads(threads []types.Thread) Snapshot {
	mainID, quickID := PickThreads(threads)
	return s.SetThreads(mainID, quickID)
}

// PickThreads returns the first main and the first quick thread id
func PickThreads(threads []types.Thread) (mainID, quickID string) {
	for _, th := range threads {
		switch th.Kind {
		case types.ThreadMain:
			if mainID == "" {
				mainID = th.ID
			}
		case types.ThreadQuick:
			if quickID == "" {
				quickID = th.ID
			}
		}
	}
	return mainID, quickID
}

// Logout resets the session to its zero state
func (s *Store) Logout() Snapshot {
	return s.apply(func(Snapshot) Snapshot {
		return Snapshot{}
	})
}
