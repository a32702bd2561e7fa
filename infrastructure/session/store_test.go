package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

func newTestSession() *domainComposer.Session {
	return &domainComposer.Session{
		ID:         uuid.New(),
		Mode:       domainComposer.SessionModeCompose,
		Draft:      domainComposer.NewDraft(),
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
}

func TestStorePutGetDelete(t *testing.T) {
	store := NewStore(30*time.Minute, time.Minute)
	sess := newTestSession()

	store.Put(sess)
	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	store.Delete(sess.ID)
	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore(30*time.Minute, time.Minute)
	_, ok := store.Get(uuid.New())
	assert.False(t, ok)
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	store := NewStore(30*time.Minute, time.Minute)

	stale := newTestSession()
	stale.LastActive = time.Now().Add(-time.Hour)
	fresh := newTestSession()

	store.Put(stale)
	store.Put(fresh)

	removed := store.Sweep(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := store.Get(stale.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSweepEmptyStore(t *testing.T) {
	store := NewStore(30*time.Minute, time.Minute)
	assert.Equal(t, 0, store.Sweep(time.Minute))
}
