// Package connectivity answers "can we reach the remote store right now"
// and notifies subscribers when that answer changes.
package connectivity

import (
	"context"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Checker reports point-in-time reachability. Implementations fail
// closed: any error means offline, never a panic or an error return.
type Checker interface {
	Online(ctx context.Context) bool
}

// Probe checks reachability by dialing the remote host.
type Probe struct {
	addr    string
	timeout time.Duration
}

// NewProbe builds a Probe from the remote base URL. Missing ports default
// by scheme.
func NewProbe(baseURL string, timeout time.Duration) (*Probe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	return &Probe{addr: net.JoinHostPort(host, port), timeout: timeout}, nil
}

func (p *Probe) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Monitor polls a Checker and delivers at most one callback per actual
// online/offline transition, so connectivity flapping cannot amplify into
// redundant sync storms.
type Monitor struct {
	checker  Checker
	interval time.Duration
	log      *zap.Logger

	subscribers []func(online bool)
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewMonitor(checker Checker, interval time.Duration, log *zap.Logger) *Monitor {
	return &Monitor{
		checker:  checker,
		interval: interval,
		log:      log,
	}
}

// Subscribe registers a transition callback. Must be called before Start.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.subscribers = append(m.subscribers, fn)
}

// Start begins polling. Callbacks run on the monitor goroutine.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		last := m.checker.Online(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				online := m.checker.Online(ctx)
				if online == last {
					continue
				}
				last = online
				m.log.Info("Connectivity changed", zap.Bool("online", online))
				for _, fn := range m.subscribers {
					fn(online)
				}
			}
		}
	}()
}

// Stop halts polling and waits for the monitor goroutine to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}
