package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// Expected CSV columns, in order:
// timestamp,symbol,open,high,low,close,volume

var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadCSV reads an OHLCV dataset from path and returns a validated BarSet.
// Files ending in .xz are decompressed transparently. If symbols is
// non-empty, only bars for those symbols are kept.
func LoadCSV(path string, symbols []string) (*BarSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz dataset %s: %w", path, err)
		}
		r = xr
	}

	bars, err := readBars(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	set, err := NewBarSet(bars)
	if err != nil {
		return nil, err
	}
	return set.FilterSymbols(symbols), nil
}

// ExtractArchive unpacks a zip bundle of datasets into destDir and returns
// the paths of the extracted CSV files.
func ExtractArchive(zipPath, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}
	if err := unzip.Extract(zipPath, destDir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", zipPath, err)
	}

	var paths []string
	err := filepath.WalkDir(destDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(p, ".csv") || strings.HasSuffix(p, ".csv.xz")) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("extract %s: no csv datasets in archive", zipPath)
	}
	return paths, nil
}

func readBars(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(header[0])) != "timestamp" {
		return nil, fmt.Errorf("unexpected header %q (want timestamp,symbol,open,high,low,close,volume)", header[0])
	}

	var bars []Bar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		b, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBar(rec []string) (Bar, error) {
	ts, err := ParseTimestamp(rec[0])
	if err != nil {
		return Bar{}, err
	}

	vals := make([]float64, 5)
	for i := 2; i < 7; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad number %q: %w", rec[i], err)
		}
		vals[i-2] = v
	}

	return Bar{
		Timestamp: ts,
		Symbol:    strings.TrimSpace(rec[1]),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// ParseTimestamp parses a dataset timestamp in one of the supported layouts,
// always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
