package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubMembership(t *testing.T) {
	hub := NewHub()
	s1 := newSession(&fakeConn{})
	s2 := newSession(&fakeConn{})

	assert.Empty(t, hub.Members("lobby"), "unknown room yields an empty set")

	hub.AddMember("lobby", s1)
	hub.AddMember("lobby", s2)
	assert.Len(t, hub.Members("lobby"), 2)

	hub.RemoveMember("lobby", s1)
	members := hub.Members("lobby")
	require.Len(t, members, 1)
	assert.Same(t, s2, members[0])

	// Removing an absent member or an unknown room is not an error.
	hub.RemoveMember("lobby", s1)
	hub.RemoveMember("nowhere", s1)
	assert.Len(t, hub.Members("lobby"), 1)

	hub.RemoveMember("lobby", s2)
	assert.Empty(t, hub.Members("lobby"))
}

func TestHubRoomsAreIndependent(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room-%d", i%4)
			s := newSession(&fakeConn{})
			hub.AddMember(room, s)
			hub.Members(room)
			hub.RemoveMember(room, s)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Empty(t, hub.Members(fmt.Sprintf("room-%d", i)))
	}
}
