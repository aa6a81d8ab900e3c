// Package publish pushes computed series to the display layer over socket.io.
package publish

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	// DefaultEvent is emitted with the results payload.
	DefaultEvent = "lca_results"
	// DefaultTimeout bounds connecting, emitting and waiting for the ack.
	DefaultTimeout = 10 * time.Second
)

// ErrTimeout is returned when the display layer does not answer in time.
var ErrTimeout = errors.New("publish timed out")

// Config describes the display-layer endpoint.
type Config struct {
	URL       string
	Namespace string
	Event     string
	// AckEvent is the event the display layer replies with. Empty means
	// Event + "_ack".
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Publisher sends one payload per call on a fresh connection.
type Publisher struct {
	cfg     Config
	baseURL string
	path    string
}

// New validates cfg and fills its defaults.
func New(cfg Config) (*Publisher, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("publish URL %q needs a scheme and host", cfg.URL)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Event == "" {
		cfg.Event = DefaultEvent
	}
	if cfg.AckEvent == "" {
		cfg.AckEvent = cfg.Event + "_ack"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	path := parsed.Path
	if path == "" || path == "/" {
		path = "/socket.io/"
	}
	return &Publisher{
		cfg:     cfg,
		baseURL: fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		path:    path,
	}, nil
}

// Config returns the effective configuration.
func (p *Publisher) Config() Config {
	return p.cfg
}

type opResult struct {
	reply any
	err   error
}

// Publish connects, emits payload under the configured event and waits for
// the ack event. It returns the first argument of the ack, if any.
func (p *Publisher) Publish(ctx context.Context, payload any) (any, error) {
	logger := ctxlog.FromContext(ctx).With("url", p.baseURL, "event", p.cfg.Event, "ackEvent", p.cfg.AckEvent)
	logger.Debug("Publish started.")
	defer logger.Debug("Publish finished.")

	data, err := Payload(payload)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(p.path)
	if p.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	var connected atomic.Bool
	done := make(chan opResult, 1)
	report := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	manager := socket.NewManager(p.baseURL, opts)
	io := manager.Socket(p.cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		connected.Store(true)
		logger.Info("Connected to display layer.", "sid", io.Id())
		io.Emit(p.cfg.Event, data)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("socket.io connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("socket.io connection failed: %w", e)
			}
		}
		report(opResult{err: err})
	})
	io.On(types.EventName(p.cfg.AckEvent), func(args ...any) {
		var reply any
		if len(args) > 0 {
			reply = args[0]
		}
		report(opResult{reply: reply})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if connected.Load() {
			return nil, fmt.Errorf("%w after connecting while waiting for event '%s'", ErrTimeout, p.cfg.AckEvent)
		}
		return nil, fmt.Errorf("%w while waiting for initial connection", ErrTimeout)
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Results acknowledged.")
		return res.reply, nil
	}
}

// Payload converts v into the generic JSON form socket.io transmits, running
// any custom MarshalJSON on the way.
func Payload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("payload must encode as a JSON object: %w", err)
	}
	return out, nil
}
