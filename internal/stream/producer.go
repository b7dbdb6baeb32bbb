package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

const (
	readChunkSize = 4 * 1024
	// maxPendingSize bounds an unterminated block; anything larger is treated as a malformed frame
	maxPendingSize = 1024 * 1024 // 1MB
)

// Produce reads body incrementally and yields decoded events, in arrival order,
// on the returned channel. The channel is closed when the body ends, fails, or
// ctx is cancelled. Cancelling ctx closes body so a blocked read returns and the
// producer stops reading; events decoded after cancellation are never sent.
func Produce(ctx context.Context, body io.ReadCloser, logger *slog.Logger) <-chan Event {
	if logger == nil {
		logger = slog.Default()
	}

	out := make(chan Event)
	closer := &onceCloser{rc: body}
	stop := context.AfterFunc(ctx, func() { closer.Close() })

	go func() {
		defer close(out)
		defer stop()
		defer closer.Close()

		frames := frameBuffer{limit: maxPendingSize}
		chunk := make([]byte, readChunkSize)

		for {
			n, err := body.Read(chunk)
			if n > 0 {
				events, dropped := frames.feed(chunk[:n])
				if dropped {
					logger.Debug("dropping oversized stream frame", "limit", maxPendingSize)
				}

				for _, ev := range events {
					if ctx.Err() != nil {
						return
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}

			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, io.EOF) {
					logger.Debug("run stream read failed", "error", err)
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	return out
}

// frameBuffer accumulates stream bytes across reads and decodes complete blocks
type frameBuffer struct {
	pending  []byte
	skipping bool
	limit    int
}

// feed appends p and returns the events of every block it completes. A block
// that grows past limit is dropped whole: the rest of it is discarded as it
// arrives, up to the next blank line. dropped reports that a block was cut.
func (f *frameBuffer) feed(p []byte) (events []Event, dropped bool) {
	f.pending = append(f.pending, p...)

	if f.skipping {
		_, next := blockBoundary(f.pending)
		if next < 0 {
			f.keepTail()
			return nil, false
		}
		f.pending = f.pending[:copy(f.pending, f.pending[next:])]
		f.skipping = false
	}

	events, consumed := Decode(f.pending)
	f.pending = f.pending[:copy(f.pending, f.pending[consumed:])]

	if len(f.pending) > f.limit {
		f.skipping = true
		f.keepTail()
		return events, true
	}
	return events, false
}

// keepTail keeps only the bytes that may begin a terminator split across reads
func (f *frameBuffer) keepTail() {
	if n := len(f.pending); n > 2 {
		f.pending = f.pending[:copy(f.pending, f.pending[n-2:])]
	}
}

// onceCloser lets the cancellation hook and the reader both close the body
type onceCloser struct {
	rc   io.Closer
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() { c.err = c.rc.Close() })
	return c.err
}
