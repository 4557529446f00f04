package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"ytharvest/internal/catalog"
	"ytharvest/internal/fileutil"
	"ytharvest/internal/services"
)

// ChannelFile stores the channel table as CSV.
type ChannelFile struct {
	path string
}

var _ catalog.ChannelTable = (*ChannelFile)(nil)

// NewChannelFile returns a table backed by path.
func NewChannelFile(path string) *ChannelFile {
	return &ChannelFile{path: path}
}

// Path returns the backing file.
func (f *ChannelFile) Path() string {
	return f.path
}

// SaveChannels replaces the file with channels under the ChannelColumns header.
func (f *ChannelFile) SaveChannels(ctx context.Context, channels []catalog.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := fileutil.WriteAtomic(f.path, 0o644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(catalog.ChannelColumns); err != nil {
			return err
		}
		for _, ch := range channels {
			if err := cw.Write(catalog.ChannelRecord(ch)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("dataset: save channels %s: %w", f.path, err)
	}
	return nil
}

// LoadChannels reads the table back. A missing file is reported as
// services.ErrMissingInput. Rows without a channel id are skipped and
// unparsable counts load as zero.
func (f *ChannelFile) LoadChannels(ctx context.Context) ([]catalog.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrMissingInput, "dataset", "load channels",
				fmt.Sprintf("%s not found; run 'ytharvest discover' first", f.path), err)
		}
		return nil, fmt.Errorf("dataset: open %s: %w", f.path, err)
	}
	defer file.Close()

	reader := newReader(file)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []catalog.Channel{}, nil
		}
		return nil, services.Wrap(services.ErrValidation, "dataset", "read header", f.path, err)
	}
	index := columnIndex(header)
	if _, ok := index[catalog.ColChannelID]; !ok {
		return nil, services.Wrap(services.ErrValidation, "dataset", "read header",
			fmt.Sprintf("%s has no %s column", f.path, catalog.ColChannelID), nil)
	}

	channels := make([]catalog.Channel, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "dataset", "read row", f.path, err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		id := field(catalog.ColChannelID)
		if id == "" {
			continue
		}
		channels = append(channels, catalog.Channel{
			ID:              id,
			Title:           field(catalog.ColTitle),
			SubscriberCount: parseCount(field(catalog.ColSubscriberCount)),
			VideoCount:      parseCount(field(catalog.ColChannelVideoCount)),
			ViewCount:       parseCount(field(catalog.ColChannelViewCount)),
			Country:         catalog.NormalizeCountry(field(catalog.ColUploaderCountry)),
		})
	}
	return channels, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return out
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range cleanHeader(header) {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

func parseCount(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Spreadsheet round-trips turn integers into "1234.0".
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	}
	return n
}
