package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/observability"
)

const claimFeedBufferSize = 16

// ClaimFeedService fans successful claims out to admin dashboards. Claims
// recorded on other nodes arrive over redis pub/sub and NATS so every node
// sees the full feed.
type ClaimFeedService interface {
	ClaimPublisher
	Subscribe() (<-chan dto.ClaimEvent, func())
	Start(ctx context.Context)
}

type claimFeedService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *claimFeedBroker
	nodeID       string
}

type claimFeedEnvelope struct {
	Source string         `json:"source"`
	Claim  dto.ClaimEvent `json:"claim"`
	SentAt time.Time      `json:"sent_at"`
}

type claimFeedBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.ClaimEvent]struct{}
}

// NewClaimFeedService constructs the claim feed. redisClient and natsConn may
// be nil; the in-process feed still works without them.
func NewClaimFeedService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ClaimFeedService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":claims"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".claims"
	}

	return &claimFeedService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "claim_feed_service").Logger(),
		broker:       &claimFeedBroker{subscribers: make(map[chan dto.ClaimEvent]struct{})},
		nodeID:       uuid.NewString(),
	}
}

func (s *claimFeedService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// PublishClaim pushes the event to local subscribers and the shared brokers.
// Broker failures are logged, never surfaced: the claim itself is already
// recorded.
func (s *claimFeedService) PublishClaim(ctx context.Context, event dto.ClaimEvent) {
	s.broker.broadcast(event)
	observability.ClaimFeedEventsTotal().Inc()

	envelope := claimFeedEnvelope{
		Source: s.nodeID,
		Claim:  event,
		SentAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode claim event")
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish claim to redis")
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish claim to nats")
		}
	}
}

func (s *claimFeedService) Subscribe() (<-chan dto.ClaimEvent, func()) {
	channel := make(chan dto.ClaimEvent, claimFeedBufferSize)

	s.broker.subscribe(channel)
	observability.FeedClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(channel)
		observability.FeedClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *claimFeedService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("claim feed redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *claimFeedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "mealtrack-claims", func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats claims subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain claim feed nats subscription")
		}
	}()
}

func (s *claimFeedService) handleEnvelope(payload []byte) {
	var envelope claimFeedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid claim feed payload")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	s.broker.broadcast(envelope.Claim)
}

func (b *claimFeedBroker) subscribe(ch chan dto.ClaimEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *claimFeedBroker) unsubscribe(ch chan dto.ClaimEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *claimFeedBroker) broadcast(event dto.ClaimEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
