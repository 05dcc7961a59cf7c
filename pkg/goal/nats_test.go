package goal

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/td0m/dayplan/pkg/persist"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestBridge(t *testing.T) {
	server := startTestNATSServer(t)

	ncA, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer ncA.Close()
	ncB, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer ncB.Close()

	a := NewBridge(ncA, "dayplan.goals", nil)
	b := NewBridge(ncB, "dayplan.goals", nil)

	fromA := make(chan []Goal, 4)
	fromB := make(chan []Goal, 4)
	_, err = a.Listen(func(goals []Goal) { fromB <- goals })
	require.NoError(t, err)
	_, err = b.Listen(func(goals []Goal) { fromA <- goals })
	require.NoError(t, err)
	require.NoError(t, ncA.Flush())
	require.NoError(t, ncB.Flush())

	store := NewStore(persist.New(persist.NewMemory()), WithDefaults(nil))
	detach := a.Attach(store)
	defer detach()

	created, err := store.Create(Goal{Title: "Learn NATS"})
	require.NoError(t, err)

	select {
	case goals := <-fromA:
		require.Len(t, goals, 1)
		assert.Equal(t, created, goals[0])
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast not received")
	}

	// a does not hear its own broadcast
	select {
	case goals := <-fromB:
		t.Fatalf("unexpected echo: %+v", goals)
	case <-time.After(100 * time.Millisecond):
	}
}
