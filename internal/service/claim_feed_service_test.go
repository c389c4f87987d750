package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
)

func TestClaimFeedDeliversToLocalSubscribers(t *testing.T) {
	svc := NewClaimFeedService(nil, "", nil, testLogger())

	events, cleanup := svc.Subscribe()
	defer cleanup()

	claim := dto.ClaimEvent{StudentIDNumber: "2024-0001", Name: "Juan Dela Cruz", Program: "BSIT", YearLevel: 2}
	svc.PublishClaim(context.Background(), claim)

	select {
	case received := <-events:
		require.Equal(t, claim, received)
	case <-time.After(time.Second):
		t.Fatal("expected claim event on local feed")
	}
}

func TestClaimFeedUnsubscribeClosesChannel(t *testing.T) {
	svc := NewClaimFeedService(nil, "", nil, testLogger())

	events, cleanup := svc.Subscribe()
	cleanup()

	_, open := <-events
	require.False(t, open)
}

func TestClaimFeedCrossNodeViaRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := NewClaimFeedService(client, "mealtrack", nil, testLogger())
	receiver := NewClaimFeedService(client, "mealtrack", nil, testLogger())
	receiver.Start(ctx)

	events, cleanup := receiver.Subscribe()
	defer cleanup()

	// Give the receiver's subscription a moment to attach.
	time.Sleep(50 * time.Millisecond)

	claim := dto.ClaimEvent{StudentIDNumber: "2024-0002", Name: "Maria Santos", Program: "ACT", YearLevel: 1}
	publisher.PublishClaim(context.Background(), claim)

	select {
	case received := <-events:
		require.Equal(t, claim, received)
	case <-time.After(2 * time.Second):
		t.Fatal("expected claim event relayed over redis")
	}
}

func TestClaimFeedIgnoresOwnBrokerEcho(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewClaimFeedService(client, "mealtrack", nil, testLogger())
	svc.Start(ctx)

	events, cleanup := svc.Subscribe()
	defer cleanup()

	time.Sleep(50 * time.Millisecond)

	claim := dto.ClaimEvent{StudentIDNumber: "2024-0003"}
	svc.PublishClaim(context.Background(), claim)

	// The local broadcast delivers exactly once; the redis echo is dropped.
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("expected local claim event")
	}

	select {
	case extra := <-events:
		t.Fatalf("unexpected duplicate event: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}
