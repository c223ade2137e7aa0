// internal/transport/transport.go
//
// Exact-length framed exchange over a byte stream.
// Responsibilities:
//   - ReceiveExact: collect exactly n bytes across partial reads.
//   - SendExact: flush a whole message across partial writes.
//   - Abort early with ErrCancelled once the context is done.
//
// A zero-byte or failed transfer is terminal (ErrTransport): the protocol
// has no resend or resync, so partial data is discarded and never returned.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrTransport reports a short or failed read/write.
	ErrTransport = errors.New("transport failure")
	// ErrCancelled reports that the context was done before the transfer finished.
	ErrCancelled = errors.New("cancelled")
)

// deadliner is implemented by net.Conn. Connections that have it get their
// blocking calls interrupted on cancellation.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Stats receives byte counts for every completed chunk.
type Stats interface {
	BytesRead(n int)
	BytesWritten(n int)
}

type nopStats struct{}

func (nopStats) BytesRead(int)    {}
func (nopStats) BytesWritten(int) {}

// Conn wraps the one connection a game is played over.
type Conn struct {
	rw    io.ReadWriter
	stats Stats
}

// New wraps rw. stats may be nil.
func New(rw io.ReadWriter, stats Stats) *Conn {
	if stats == nil {
		stats = nopStats{}
	}
	return &Conn{rw: rw, stats: stats}
}

// Close closes the underlying connection if it is closable.
func (c *Conn) Close() error {
	if cl, ok := c.rw.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// ReceiveExact reads exactly n bytes.
func (c *Conn) ReceiveExact(ctx context.Context, n int) ([]byte, error) {
	stop := c.interruptOn(ctx)
	defer stop()

	buf := make([]byte, n)
	got := 0
	for got < n {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: receive after %d/%d bytes", ErrCancelled, got, n)
		}
		r, err := c.rw.Read(buf[got:])
		if r > 0 {
			c.stats.BytesRead(r)
		}
		if r <= 0 || err != nil {
			if r > 0 && got+r == n && err == io.EOF {
				// Full message delivered together with EOF.
				return buf, nil
			}
			return nil, c.fail(ctx, "receive", got+max(r, 0), n, err)
		}
		got += r
	}
	return buf, nil
}

// SendExact writes all of b.
func (c *Conn) SendExact(ctx context.Context, b []byte) error {
	stop := c.interruptOn(ctx)
	defer stop()

	sent := 0
	for sent < len(b) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: send after %d/%d bytes", ErrCancelled, sent, len(b))
		}
		w, err := c.rw.Write(b[sent:])
		if w > 0 {
			c.stats.BytesWritten(w)
		}
		if w <= 0 || err != nil {
			return c.fail(ctx, "send", sent+max(w, 0), len(b), err)
		}
		sent += w
	}
	return nil
}

// fail classifies a terminal transfer error. A failure caused by
// cancellation is reported as ErrCancelled.
func (c *Conn) fail(ctx context.Context, op string, done, want int, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s after %d/%d bytes", ErrCancelled, op, done, want)
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %s %d/%d bytes: %w", ErrTransport, op, done, want, err)
}

// interruptOn unblocks a pending Read/Write when ctx is cancelled by
// pushing the connection deadline into the past.
func (c *Conn) interruptOn(ctx context.Context) (stop func()) {
	d, ok := c.rw.(deadliner)
	if !ok {
		return func() {}
	}
	unregister := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Now())
	})
	return func() { unregister() }
}
