package nmf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/banshee-data/callrca/internal/monitoring"
	"github.com/banshee-data/callrca/internal/timeutil"
)

// ErrNoAnchor is returned at the end of a stream that had timestamped lines
// but never a #START line carrying the log date.
var ErrNoAnchor = errors.New("nmf: no #START anchor date before timestamped records")

const maxLineBytes = 4 * 1024 * 1024

// Reader yields timestamped Records from an NMF stream. Lines that cannot be
// placed in time are skipped and counted, never returned.
type Reader struct {
	sc        *bufio.Scanner
	recon     *timeutil.Reconstructor
	skips     *monitoring.SkipCounter
	line      int
	anchored  bool
	unanchors int
}

// NewReader wraps r. skips may be nil.
func NewReader(r io.Reader, rollover time.Duration, skips *monitoring.SkipCounter) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{
		sc:    sc,
		recon: timeutil.NewReconstructor(rollover),
		skips: skips,
	}
}

// Next returns the next record, io.EOF at the end of input, or ErrNoAnchor
// at the end of an input that never supplied its date.
func (r *Reader) Next() (Record, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if r.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" {
			continue
		}

		fields, err := Tokenize(text)
		if err != nil || len(fields) == 0 {
			r.skips.Add(monitoring.SkipTokenize)
			continue
		}
		header := NormalizeHeader(fields[0])

		if header == HeaderStart {
			if date, ok := ParseStartDate(fields); ok {
				r.recon.SetBaseDate(date)
				r.anchored = true
			} else {
				r.skips.Add(monitoring.SkipBadAnchor)
			}
			continue
		}

		if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
			continue
		}
		if !r.recon.HasBase() {
			r.unanchors++
			r.skips.Add(monitoring.SkipNoAnchor)
			continue
		}
		ts, ok := r.recon.Absolute(fields[1])
		if !ok {
			r.skips.Add(monitoring.SkipBadTime)
			continue
		}

		rec := Record{
			Line:   r.line,
			Header: header,
			TS:     ts,
			Fields: fields,
		}
		rec.DeviceID = rec.Text(FieldDevice)
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return Record{}, fmt.Errorf("nmf: read line %d: %w", r.line+1, err)
	}
	if !r.anchored && r.unanchors > 0 {
		return Record{}, ErrNoAnchor
	}
	return Record{}, io.EOF
}

// ReadAll drains r into a slice.
func ReadAll(r *Reader) ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
