// Package framestream turns the two output channels of a decode process
// (a raw RGB24 pixel stream and a line-oriented log with one pts_time
// marker per frame) into a single ordered sequence of frames.
//
// The two channels are produced independently: the pixel stream can run
// ahead of the log parser. The Reader tolerates the lag with two
// policies: Lookup returns the timestamp only when it is already known,
// WaitTimestamp blocks until it exists or the log stream ends.
package framestream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"
)

var ptsPattern = regexp.MustCompile(`pts_time:([0-9.]+)`)

// Frame is one decoded frame paired with its timestamp when available.
type Frame struct {
	Index        int
	Pixels       []byte
	Timestamp    float64
	HasTimestamp bool
}

// Reader reads fixed-size frames from the pixel stream while a single
// worker goroutine scans the log stream for timestamps.
type Reader struct {
	pixels    io.Reader
	frameSize int
	index     int

	table   *timestampTable
	workerC chan struct{}
	scanErr error
}

// NewReader starts the log-scanning worker and returns a Reader that
// yields frames of frameSize bytes. Close must be called to join the
// worker, even after an error.
func NewReader(pixels, log io.Reader, frameSize int) *Reader {
	r := &Reader{
		pixels:    pixels,
		frameSize: frameSize,
		table:     newTimestampTable(),
		workerC:   make(chan struct{}),
	}
	go r.scanLog(log)
	return r
}

// Next reads the next full frame from the pixel stream. A short or
// empty final read is the normal end of stream and is reported as
// io.EOF. The returned frame carries a timestamp only if the log worker
// has already parsed it; use WaitTimestamp to block for it instead.
func (r *Reader) Next() (Frame, error) {
	buf := make([]byte, r.frameSize)
	n, err := io.ReadFull(r.pixels, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return Frame{}, io.EOF
	}
	if err != nil {
		return Frame{}, fmt.Errorf("read frame %d (%d of %d bytes): %w", r.index, n, r.frameSize, err)
	}

	f := Frame{Index: r.index, Pixels: buf}
	f.Timestamp, f.HasTimestamp = r.table.lookup(r.index)
	r.index++
	return f, nil
}

// FrameCount returns the number of complete frames read so far.
func (r *Reader) FrameCount() int {
	return r.index
}

// Lookup returns the timestamp for a frame index if the log worker has
// parsed it.
func (r *Reader) Lookup(index int) (float64, bool) {
	return r.table.lookup(index)
}

// WaitTimestamp blocks until the timestamp for index is available. It
// returns ok=false without error when the log stream ended before
// producing it, which marks the frame as explicitly unavailable.
func (r *Reader) WaitTimestamp(ctx context.Context, index int) (float64, bool, error) {
	return r.table.wait(ctx, index)
}

// Close joins the log worker and returns any log scanning error. It
// must only be called once the pixel stream is exhausted or abandoned,
// and the decode process's pipes are closed, otherwise it blocks.
func (r *Reader) Close() error {
	<-r.workerC
	return r.scanErr
}

func (r *Reader) scanLog(log io.Reader) {
	defer close(r.workerC)
	defer r.table.close()

	scanner := bufio.NewScanner(log)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := ptsPattern.FindSubmatch(scanner.Bytes())
		if m == nil {
			continue
		}
		ts, err := strconv.ParseFloat(string(m[1]), 64)
		if err != nil {
			continue
		}
		r.table.publish(ts)
	}
	if err := scanner.Err(); err != nil {
		r.scanErr = fmt.Errorf("scan decoder log: %w", err)
	}
}

// timestampTable is the hand-off point between the log worker and the
// frame consumer. Timestamps arrive in frame order; waiters block on a
// condition variable instead of polling.
type timestampTable struct {
	mu   sync.Mutex
	cond *sync.Cond
	ts   []float64
	done bool
}

func newTimestampTable() *timestampTable {
	t := &timestampTable{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *timestampTable) publish(v float64) {
	t.mu.Lock()
	t.ts = append(t.ts, v)
	t.mu.Unlock()
	t.cond.Broadcast()
}

func (t *timestampTable) close() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
	t.cond.Broadcast()
}

func (t *timestampTable) lookup(index int) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < len(t.ts) {
		return t.ts[index], true
	}
	return 0, false
}

func (t *timestampTable) wait(ctx context.Context, index int) (float64, bool, error) {
	stop := context.AfterFunc(ctx, func() {
		t.cond.Broadcast()
	})
	defer stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		if index < len(t.ts) {
			return t.ts[index], true, nil
		}
		if t.done {
			return 0, false, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		t.cond.Wait()
	}
}
