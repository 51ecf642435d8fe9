package push

import (
	"context"
	"sync/atomic"
	"time"

	"nof1/dashboard/internal/model"
	"nof1/dashboard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

// State is the push channel connection state
type State int32

// Connection states. There is no terminal state while the client is
// running: after a close or error the client always schedules a
// reconnect. Cancelling the Run context is the only way to stop it.
const (
	Disconnected State = iota
	Connecting
	Connected
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Conn is the subset of a websocket connection the client needs.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// Dialer opens a connection to the push endpoint
type Dialer func(ctx context.Context, url string) (Conn, error)

// DefaultDialer dials with the gorilla default dialer
func DefaultDialer(ctx context.Context, rawURL string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Sink receives the store effects of decoded push events. The store
// implements it; both the push channel and explicit fetches converge on
// the same state-update contract there.
type Sink interface {
	SetConnected(connected bool)
	ApplyBotDelta(delta model.BotStateDelta)
	MergeMarketData(data map[string]model.MarketData, timestamp string)
	TradeExecuted(trade model.Trade)
}

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	Dialer            Dialer
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	Log               *logger.Logger
}

// Client maintains a long-lived, auto-reconnecting push connection and
// dispatches typed server events to the sink.
type Client struct {
	url   string
	sink  Sink
	dial  Dialer
	delay *backoff.Backoff
	log   *logger.Logger
	state atomic.Int32
}

// NewClient creates a push channel client for the given URL
func NewClient(url string, sink Sink, opts Options) *Client {
	dial := opts.Dialer
	if dial == nil {
		dial = DefaultDialer
	}
	min := opts.ReconnectDelay
	if min <= 0 {
		min = 3 * time.Second
	}
	max := opts.MaxReconnectDelay
	if max < min {
		max = min
	}
	log := opts.Log
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		url:  url,
		sink: sink,
		dial: dial,
		delay: &backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: 2,
			Jitter: false,
		},
		log: log,
	}
}

// State returns the current connection state
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// Run drives the connect/read/reconnect loop until ctx is cancelled.
// Cancellation is a teardown boundary, not a transient disconnect: the
// live connection is closed and no further reconnect is scheduled.
func (c *Client) Run(ctx context.Context) {
	defer c.setState(Disconnected)

	for {
		if ctx.Err() != nil {
			return
		}

		c.setState(Connecting)
		conn, err := c.dial(ctx, c.url)
		if err != nil {
			c.setState(Disconnected)
			if ctx.Err() != nil {
				return
			}
			c.log.Warnf("push channel: connect to %s failed: %v", c.url, err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		c.delay.Reset()
		c.setState(Connected)
		c.sink.SetConnected(true)
		c.log.Infof("push channel: connected to %s", c.url)

		c.readLoop(ctx, conn)

		conn.Close()
		c.setState(Disconnected)
		c.sink.SetConnected(false)

		if ctx.Err() != nil {
			return
		}
		c.log.Infof("push channel: disconnected, reconnecting after backoff")
		if !c.wait(ctx) {
			return
		}
	}
}

// wait sleeps for the current backoff delay. Returns false when the
// context was cancelled before the delay elapsed.
func (c *Client) wait(ctx context.Context) bool {
	timer := time.NewTimer(c.delay.Duration())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// readLoop reads frames until the connection drops or ctx is cancelled.
// A transport error force-closes the connection rather than leaving it
// half-open; ReadMessage is unblocked by closing the conn on cancel.
func (c *Client) readLoop(ctx context.Context, conn Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warnf("push channel: read failed: %v", err)
			}
			return
		}
		c.dispatch(raw)
	}
}
