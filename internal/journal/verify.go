package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Verify reads a journal file and re-checks every hash. The first event
// anchors the file, since its predecessor may live in the previous hour's
// file. A writer restart begins a new chain at seq 1, so a file may hold
// several chains. It returns the number of events read.
func Verify(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("opening zstd stream: %w", err)
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var prev *Event
	count := 0
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return count, fmt.Errorf("line %d: %w", count+1, err)
		}

		switch {
		case prev == nil:
		case e.Seq == 1:
			if e.Prev != "" {
				return count, fmt.Errorf("%w: seq 1 at line %d has a predecessor", ErrBrokenChain, count+1)
			}
		case e.Seq != prev.Seq+1 || e.Prev != prev.Hash:
			return count, fmt.Errorf("%w: line %d does not follow its predecessor", ErrBrokenChain, count+1)
		}

		want, err := eventHash(e)
		if err != nil {
			return count, err
		}
		if want != e.Hash {
			return count, fmt.Errorf("%w: hash mismatch at line %d", ErrBrokenChain, count+1)
		}

		count++
		prev = &e
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("reading journal: %w", err)
	}
	return count, nil
}
