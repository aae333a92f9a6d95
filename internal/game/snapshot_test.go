package game

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/models"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestSnapshotSaveIsFirstWriteWins(t *testing.T) {
	m := NewSnapshotManager(quietLog())
	p := models.NewPlayer("alice", "WORK")
	p.Money = 100

	m.Save(p, "WORK")
	require.True(t, m.HasSnapshot(p.ID, "WORK"))

	// A second save for the same key must not clobber the arrival state.
	p.Money = 5
	m.Save(p, "WORK")
	assert.Equal(t, 100, m.Get(p.ID, "WORK").Player.Money)
}

func TestSnapshotRevertRestoresAndCharges(t *testing.T) {
	m := NewSnapshotManager(quietLog())
	p := models.NewPlayer("alice", "WORK")
	p.Money = 100
	p.TimeSpent = 10
	m.Save(p, "WORK")

	p.Money = 0
	p.Hand = append(p.Hand, "E001")
	p.TimeSpent = 14

	require.True(t, m.Revert(p, "WORK", 1))
	assert.Equal(t, 100, p.Money)
	assert.Empty(t, p.Hand)
	assert.Equal(t, 11, p.TimeSpent, "snapshot time plus penalty, not current time")

	// Reverting again yields the identical result: the snapshot survives
	// and is immutable.
	p.Money = -50
	require.True(t, m.Revert(p, "WORK", 1))
	assert.Equal(t, 100, p.Money)
	assert.Equal(t, 11, p.TimeSpent)
}

func TestSnapshotRevertUnknownKey(t *testing.T) {
	m := NewSnapshotManager(quietLog())
	p := models.NewPlayer("alice", "WORK")
	assert.False(t, m.Revert(p, "ELSEWHERE", 1))
}

func TestSnapshotClearDropsAllForPlayer(t *testing.T) {
	m := NewSnapshotManager(quietLog())
	p := models.NewPlayer("alice", "A")
	m.Save(p, "A")
	p.Space = "B"
	m.Save(p, "B")

	m.Clear(p.ID)
	assert.False(t, m.HasSnapshot(p.ID, "A"))
	assert.False(t, m.HasSnapshot(p.ID, "B"))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := NewSnapshotManager(quietLog())
	p := models.NewPlayer("alice", "WORK")
	p.Hand = []string{"E001"}
	m.Save(p, "WORK")

	p.Hand[0] = "MUTATED"
	assert.Equal(t, "E001", m.Get(p.ID, "WORK").Player.Hand[0])
}
