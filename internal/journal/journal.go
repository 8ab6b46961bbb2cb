// Package journal appends mission lifecycle events to hourly zstd-compressed
// JSONL files. Each event carries the blake3 hash of its predecessor so a
// file can be checked for tampering or truncation.
package journal

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// ErrBrokenChain is returned by Verify when an event does not link to the
// one before it or its hash does not match its contents.
var ErrBrokenChain = errors.New("journal hash chain broken")

// Event is one journal line.
type Event struct {
	Seq       uint64          `json:"seq"`
	At        time.Time       `json:"at"`
	Type      string          `json:"type"`
	PlayerID  string          `json:"player_id,omitempty"`
	MissionID string          `json:"mission_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Prev      string          `json:"prev"`
	Hash      string          `json:"hash"`
}

// NewEvent builds an unsequenced event. data is marshalled to JSON.
func NewEvent(typ, playerID, missionID string, data any) (Event, error) {
	e := Event{Type: typ, PlayerID: playerID, MissionID: missionID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("encoding event data: %w", err)
		}
		e.Data = raw
	}
	return e, nil
}

// Writer appends events. It is safe for concurrent use.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	seq     uint64
	last    string
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewWriter creates a writer producing baseDir/prefix-YYYY-MM-DD-HH.jsonl.zst.
// now may be nil.
func NewWriter(baseDir, prefix string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{baseDir: baseDir, prefix: prefix, now: now}
}

// Append sequences e, links it to the previous event and writes it.
func (w *Writer) Append(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := w.now().UTC()
	hour := at.Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	e.Seq = w.seq + 1
	e.At = at
	e.Prev = w.last
	hash, err := eventHash(e)
	if err != nil {
		return err
	}
	e.Hash = hash

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	if err := w.enc.Flush(); err != nil {
		return err
	}

	w.seq = e.Seq
	w.last = e.Hash
	return nil
}

// Close flushes and closes the current file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Path returns the file events appended at t land in.
func (w *Writer) Path(t time.Time) string {
	return w.pathForHour(t.UTC().Format("2006-01-02-15"))
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// eventHash is blake3(prev || event-without-hash).
func eventHash(e Event) (string, error) {
	e.Hash = ""
	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encoding event: %w", err)
	}
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(e.Prev))
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
