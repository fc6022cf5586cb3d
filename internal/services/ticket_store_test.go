package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStore_PutOverwrites(t *testing.T) {
	store := NewMemoryTicketStore(4)
	now := time.Now()

	store.Put(Ticket{Email: "a@example.com", Code: "111111", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})
	store.Put(Ticket{Email: "a@example.com", Code: "222222", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})

	ticket, ok := store.Get("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "222222", ticket.Code)
}

func TestTicketStore_EvictsExpiredFirst(t *testing.T) {
	store := NewMemoryTicketStore(2)
	now := time.Now()

	store.Put(Ticket{Email: "expired@example.com", Code: "111111", IssuedAt: now.Add(-10 * time.Minute), ExpiresAt: now.Add(-5 * time.Minute)})
	store.Put(Ticket{Email: "live@example.com", Code: "222222", IssuedAt: now, ExpiresAt: now.Add(5 * time.Minute)})
	store.Put(Ticket{Email: "new@example.com", Code: "333333", IssuedAt: now, ExpiresAt: now.Add(5 * time.Minute)})

	_, ok := store.Get("expired@example.com")
	assert.False(t, ok)
	_, ok = store.Get("live@example.com")
	assert.True(t, ok)
	_, ok = store.Get("new@example.com")
	assert.True(t, ok)
}

func TestTicketStore_EvictsOldestWhenAllLive(t *testing.T) {
	store := NewMemoryTicketStore(3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		store.Put(Ticket{
			Email:     fmt.Sprintf("user%d@example.com", i),
			Code:      "111111",
			IssuedAt:  now.Add(time.Duration(i) * time.Second),
			ExpiresAt: now.Add(5 * time.Minute),
		})
	}
	store.Put(Ticket{Email: "late@example.com", Code: "444444", IssuedAt: now.Add(time.Minute), ExpiresAt: now.Add(5 * time.Minute)})

	// the oldest live ticket made room
	_, ok := store.Get("user0@example.com")
	assert.False(t, ok)
	_, ok = store.Get("user2@example.com")
	assert.True(t, ok)
	_, ok = store.Get("late@example.com")
	assert.True(t, ok)
}

func TestTicketStore_VerifiedMarks(t *testing.T) {
	store := NewMemoryTicketStore(4)

	assert.False(t, store.IsVerified("a@example.com"))
	store.MarkVerified("a@example.com")
	assert.True(t, store.IsVerified("a@example.com"))
	store.ClearVerified("a@example.com")
	assert.False(t, store.IsVerified("a@example.com"))
}
