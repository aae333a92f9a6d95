package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"groundwork/internal/models"
)

// Snapshot is a full pre-effect copy of one player's state, keyed by the
// (player, space) pair it was taken on.
type Snapshot struct {
	PlayerID uuid.UUID
	Space    string
	Player   *models.Player // deep copy, never aliased by live state
}

// SnapshotManager captures pre-effect player snapshots so a space's effects
// can be retried ("Try Again"). Only one snapshot may exist per
// (player, space) key and it is never overwritten while present: every
// retry reverts to the original arrival state, not to the state after an
// earlier failed attempt.
type SnapshotManager struct {
	log   *logrus.Entry
	saved map[uuid.UUID]map[string]*Snapshot
}

// NewSnapshotManager creates an empty manager.
func NewSnapshotManager(log *logrus.Entry) *SnapshotManager {
	return &SnapshotManager{
		log:   log,
		saved: make(map[uuid.UUID]map[string]*Snapshot),
	}
}

// HasSnapshot reports whether a snapshot exists for the key.
func (m *SnapshotManager) HasSnapshot(playerID uuid.UUID, space string) bool {
	_, ok := m.saved[playerID][space]
	return ok
}

// Save captures a snapshot of the player for the space. No-op when one
// already exists for the key.
func (m *SnapshotManager) Save(player *models.Player, space string) {
	if m.HasSnapshot(player.ID, space) {
		return
	}
	if m.saved[player.ID] == nil {
		m.saved[player.ID] = make(map[string]*Snapshot)
	}
	m.saved[player.ID][space] = &Snapshot{
		PlayerID: player.ID,
		Space:    space,
		Player:   player.Clone(),
	}
	m.log.WithFields(logrus.Fields{"player": player.ID, "space": space}).Debug("snapshot saved")
}

// Get returns the player's snapshot for their current space, or nil.
func (m *SnapshotManager) Get(playerID uuid.UUID, space string) *Snapshot {
	return m.saved[playerID][space]
}

// Revert restores the player's fields from the snapshot into dst and
// applies the time penalty atomically with the restore. The snapshot
// itself is retained unchanged, so further retries revert to the same
// arrival state. Returns false when no snapshot exists for the key.
func (m *SnapshotManager) Revert(dst *models.Player, space string, timePenalty int) bool {
	snap := m.saved[dst.ID][space]
	if snap == nil {
		return false
	}
	*dst = *snap.Player.Clone()
	dst.TimeSpent += timePenalty
	m.log.WithFields(logrus.Fields{"player": dst.ID, "space": space, "penalty": timePenalty}).Info("snapshot reverted")
	return true
}

// Clear drops every snapshot for a player. Called when a turn commits, so
// stale arrival states cannot leak into later visits.
func (m *SnapshotManager) Clear(playerID uuid.UUID) {
	delete(m.saved, playerID)
}
