package sqlite

import "interviewd/internal/interview"

// Ensure the SQLite store implements the persistence interface.
var _ interview.SnapshotStore = (*SnapshotStore)(nil)
