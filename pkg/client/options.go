package client

import (
	"time"

	"go.uber.org/zap"
)

type config struct {
	l        *zap.SugaredLogger
	timeout  time.Duration
	numTries int
	trace    bool
	netascii bool
}

type Option func(*config)

// WithLogger sets the logger transfers report to. The default discards.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *config) {
		if l != nil {
			c.l = l
		}
	}
}

// WithTimeout bounds every receive when the transport supports read
// deadlines. Zero, the default, blocks until a datagram arrives.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithNumTries sets how many times a receive is attempted before the
// transfer fails; every timed out attempt retransmits the last packet.
// It only has an effect together with WithTimeout.
func WithNumTries(numTries int) Option {
	return func(c *config) {
		c.numTries = max(numTries, 1)
	}
}

// WithTrace logs every block sent and received at debug level.
func WithTrace(trace bool) Option {
	return func(c *config) {
		c.trace = trace
	}
}

// WithNetASCII translates line endings between the local representation and
// netascii. Off by default, payload bytes are sent as they are.
func WithNetASCII(netascii bool) Option {
	return func(c *config) {
		c.netascii = netascii
	}
}

func newConfig(opts ...Option) config {
	c := config{
		l:        zap.NewNop().Sugar(),
		numTries: 1,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
