package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102 150405",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadBars reads a bar CSV (optionally xz-compressed, by extension).
//
// The header must name at least date/Open/High/Low/Close; Volume and the
// Bid_*/Ask_* OHLC columns are optional and default to zero volume and mid
// quotes. Header matching is case-insensitive.
//
// Timestamps must be strictly increasing: a duplicate of the previous
// timestamp is dropped (keep-first), anything going backwards is a caller
// contract violation and fails the load.
func LoadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		src = xr
	}

	return ReadBars(src, path)
}

// ReadBars parses bar rows from an open CSV stream. name is used in errors.
func ReadBars(src io.Reader, name string) ([]Bar, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", name, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	need := []string{"open", "high", "low", "close"}
	for _, c := range need {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, c)
		}
	}
	timeIdx, ok := col["date"]
	if !ok {
		if timeIdx, ok = col["time"]; !ok {
			return nil, fmt.Errorf("%s: missing date/time column", name)
		}
	}

	get := func(rec []string, key string, fallback float64) (float64, error) {
		i, ok := col[key]
		if !ok || i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
			return fallback, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	}

	var bars []Bar
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}

		ts, err := parseTime(rec[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}

		if n := len(bars); n > 0 {
			prev := bars[n-1].Time
			if ts.Equal(prev) {
				continue // keep-first
			}
			if ts.Before(prev) {
				return nil, fmt.Errorf("%s line %d: timestamp %s not after %s", name, line, ts, prev)
			}
		}

		b := Bar{Time: ts, Session: SessionOf(ts)}
		fields := []struct {
			key string
			dst *float64
		}{
			{"open", &b.Open}, {"high", &b.High}, {"low", &b.Low}, {"close", &b.Close},
		}
		for _, fd := range fields {
			if *fd.dst, err = get(rec, fd.key, 0); err != nil {
				return nil, fmt.Errorf("%s line %d: column %s: %w", name, line, fd.key, err)
			}
		}
		if b.Volume, err = get(rec, "volume", 0); err != nil {
			return nil, fmt.Errorf("%s line %d: column volume: %w", name, line, err)
		}

		quotes := []struct {
			key string
			dst *float64
			mid float64
		}{
			{"bid_open", &b.BidOpen, b.Open}, {"bid_high", &b.BidHigh, b.High},
			{"bid_low", &b.BidLow, b.Low}, {"bid_close", &b.BidClose, b.Close},
			{"ask_open", &b.AskOpen, b.Open}, {"ask_high", &b.AskHigh, b.High},
			{"ask_low", &b.AskLow, b.Low}, {"ask_close", &b.AskClose, b.Close},
		}
		for _, q := range quotes {
			if *q.dst, err = get(rec, q.key, q.mid); err != nil {
				return nil, fmt.Errorf("%s line %d: column %s: %w", name, line, q.key, err)
			}
		}

		b.ATR = Undefined()
		b.ADX = Undefined()
		b.Chop = Undefined()

		bars = append(bars, b)
	}

	return bars, nil
}
