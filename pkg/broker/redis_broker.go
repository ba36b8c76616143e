// licita/pkg/broker/redis_broker.go

package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rules"
)

const (
	DefaultDocumentsChannel = "licita:documents"
	DefaultReportsChannel   = "licita:reports"
)

type Channels struct {
	Documents string
	Reports   string
}

// DefaultChannels returns the channel names used when none are configured.
func DefaultChannels() Channels {
	return Channels{Documents: DefaultDocumentsChannel, Reports: DefaultReportsChannel}
}

// Request asks for one document to be analysed. Category may be empty.
type Request struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Text     string `json:"text"`
}

// Response answers a Request with the same ID. Error is set instead of
// Report when the request could not be served.
type Response struct {
	ID        string             `json:"id"`
	Report    *analyzer.Report   `json:"report,omitempty"`
	Semaphore analyzer.Semaphore `json:"semaphore,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Handler turns a decoded request into a report.
type Handler func(ctx context.Context, req Request) (analyzer.Report, error)

// RedisBroker moves analysis requests and responses over Redis pub/sub.
// It never reads or writes keys.
type RedisBroker struct {
	client   *redis.Client
	channels Channels
}

// NewRedisBroker connects to Redis and verifies the connection with PING.
func NewRedisBroker(ctx context.Context, addr, password string, db int, channels Channels) (*RedisBroker, error) {
	logging.Logger.Info().Str("addr", addr).Int("db", db).Msg("Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, logging.NewError(logging.ErrorTypeTransport, "failed to connect to redis", err,
			map[string]interface{}{"addr": addr, "db": db})
	}

	if channels.Documents == "" {
		channels.Documents = DefaultDocumentsChannel
	}
	if channels.Reports == "" {
		channels.Reports = DefaultReportsChannel
	}

	logging.Logger.Info().Msg("Successfully connected to Redis")
	return &RedisBroker{client: client, channels: channels}, nil
}

func (b *RedisBroker) Channels() Channels {
	return b.channels
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

// Subscribe subscribes to channels and waits for the server to confirm.
func (b *RedisBroker) Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	logging.Logger.Info().Strs("channels", channels).Msg("Subscribing to Redis channels")

	pubsub := b.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, logging.NewError(logging.ErrorTypeTransport, "failed to subscribe", err,
			map[string]interface{}{"channels": channels})
	}

	logging.Logger.Info().Strs("channels", channels).Msg("Successfully subscribed to Redis channels")
	return pubsub, nil
}

// SubscribeRequests subscribes to the documents channel.
func (b *RedisBroker) SubscribeRequests(ctx context.Context) (*redis.PubSub, error) {
	return b.Subscribe(ctx, b.channels.Documents)
}

// SubscribeResponses subscribes to the reports channel.
func (b *RedisBroker) SubscribeResponses(ctx context.Context) (*redis.PubSub, error) {
	return b.Subscribe(ctx, b.channels.Reports)
}

// Serve handles every message received on pubsub, one at a time, and
// publishes a Response for each. It returns when ctx is cancelled or the
// subscription is closed.
func (b *RedisBroker) Serve(ctx context.Context, pubsub *redis.PubSub, handler Handler) error {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			resp := b.handle(ctx, msg.Payload, handler)
			if err := b.PublishResponse(ctx, resp); err != nil {
				logging.LogError(logging.Logger, err)
			}
		}
	}
}

func (b *RedisBroker) handle(ctx context.Context, payload string, handler Handler) Response {
	var req Request
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		logging.Logger.Warn().Err(err).Str("payload", truncate(payload, 120)).Msg("Discarding malformed request")
		return Response{Error: fmt.Sprintf("malformed request: %v", err)}
	}

	report, err := handler(ctx, req)
	if err != nil {
		logging.Logger.Warn().Err(err).Str("id", req.ID).Msg("Request failed")
		return Response{ID: req.ID, Error: err.Error()}
	}

	logging.Logger.Debug().Str("id", req.ID).Int("score", report.Score).Msg("Request analysed")
	return Response{ID: req.ID, Report: &report, Semaphore: report.Semaphore()}
}

func (b *RedisBroker) PublishResponse(ctx context.Context, resp Response) error {
	return b.publish(ctx, b.channels.Reports, resp)
}

// Submit publishes req on the documents channel and returns its ID, which
// is generated when req.ID is empty.
func (b *RedisBroker) Submit(ctx context.Context, req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := b.publish(ctx, b.channels.Documents, req); err != nil {
		return "", err
	}
	return req.ID, nil
}

func (b *RedisBroker) publish(ctx context.Context, channel string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return logging.NewError(logging.ErrorTypeTransport, "failed to encode message", err,
			map[string]interface{}{"channel": channel})
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return logging.NewError(logging.ErrorTypeTransport, "failed to publish message", err,
			map[string]interface{}{"channel": channel})
	}
	return nil
}

// AwaitResponse reads pubsub until the response for id arrives.
func AwaitResponse(ctx context.Context, pubsub *redis.PubSub, id string) (Response, error) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return Response{}, logging.NewError(logging.ErrorTypeTransport, "subscription closed", nil,
					map[string]interface{}{"id": id})
			}
			resp, err := DecodeResponse(msg.Payload)
			if err != nil {
				continue
			}
			if resp.ID == id {
				return resp, nil
			}
		}
	}
}

func DecodeResponse(payload string) (Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return Response{}, logging.NewError(logging.ErrorTypeTransport, "malformed response", err, nil)
	}
	return resp, nil
}

// AnalyzeHandler serves requests against rs, narrowed to the request's
// category when one is given.
func AnalyzeHandler(rs []rules.Rule) Handler {
	return func(_ context.Context, req Request) (analyzer.Report, error) {
		if req.Category != "" {
			if _, ok := rules.LookupCategory(req.Category); !ok {
				return analyzer.Report{}, fmt.Errorf("unknown category %q", req.Category)
			}
		}
		return analyzer.Analyze(req.Text, rules.ForCategory(rs, rules.Category(req.Category))), nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
