package interview

// Snapshot is the durable image of the application state: every session plus
// the current-session pointer. The active tab is deliberately not part of it;
// only session data survives a restart.
type Snapshot struct {
	Sessions         []*Session `json:"sessions"`
	CurrentSessionID string     `json:"current_session_id"`
}

// SnapshotStore is the persistence contract: a write survives a restart and a
// read returns the last write. Implementations exist for JSON files, SQLite
// and PostgreSQL.
type SnapshotStore interface {
	// Save persists the snapshot, replacing any previous one.
	Save(snapshot *Snapshot) error

	// Load returns the last saved snapshot, or an empty snapshot when none
	// has ever been written.
	Load() (*Snapshot, error)
}

// Snapshot returns a deep copy of the persistable state, ordered by session
// creation time. The copy is safe to serialize while the store keeps mutating.
func (st *Store) Snapshot() *Snapshot {
	st.mu.RLock()
	currentID := st.currentID
	st.mu.RUnlock()

	return &Snapshot{
		Sessions:         st.Sessions(),
		CurrentSessionID: currentID,
	}
}

// Restore replaces the store's sessions and current pointer with the
// snapshot's. A dangling current pointer is cleared rather than kept.
func (st *Store) Restore(snapshot *Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions = make(map[string]*Session, len(snapshot.Sessions))
	for _, sess := range snapshot.Sessions {
		st.sessions[sess.ID] = sess.Clone()
	}

	st.currentID = ""
	if _, ok := st.sessions[snapshot.CurrentSessionID]; ok {
		st.currentID = snapshot.CurrentSessionID
	}
}
