package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ytharvest/internal/fileutil"
	"ytharvest/internal/logging"
)

// ConcatReport describes a Concat call.
type ConcatReport struct {
	Header  []string
	Merged  []string
	Skipped []string
	Rows    int
	Written bool
}

// Concat merges the CSV files at paths into out. The first existing file
// supplies the header; rows of later files are projected onto it by column
// name, leaving absent columns empty. Missing inputs are skipped. When none
// exist nothing is written and Written is false.
func Concat(paths []string, out string, logger *slog.Logger) (ConcatReport, error) {
	logger = logging.NewComponentLogger(logger, "concat")
	var report ConcatReport
	var rows [][]string

	for _, path := range paths {
		ok, err := fileutil.Exists(path)
		if err != nil {
			return report, fmt.Errorf("dataset: stat %s: %w", path, err)
		}
		if !ok {
			report.Skipped = append(report.Skipped, path)
			logger.Info("input file not found; skipping", logging.String("path", path))
			continue
		}
		header, records, err := readTable(path)
		if err != nil {
			return report, err
		}
		if report.Header == nil {
			if len(header) == 0 {
				report.Skipped = append(report.Skipped, path)
				logger.Info("input file empty; skipping", logging.String("path", path))
				continue
			}
			report.Header = header
		}
		rows = append(rows, project(report.Header, header, records)...)
		report.Merged = append(report.Merged, path)
	}

	if report.Header == nil {
		return report, nil
	}

	err := fileutil.WriteAtomic(out, 0o644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(report.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		return report, fmt.Errorf("dataset: write %s: %w", out, err)
	}
	report.Rows = len(rows)
	report.Written = true
	logger.Info("files concatenated",
		logging.Int("files", len(report.Merged)),
		logging.Int("rows", report.Rows),
		logging.String("output", out),
	)
	return report, nil
}

func readTable(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	reader := newReader(file)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return cleanHeader(header), records, nil
}

func project(target, source []string, records [][]string) [][]string {
	index := columnIndex(source)
	out := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(target))
		for i, name := range target {
			j, ok := index[name]
			if ok && j < len(record) {
				row[i] = record[j]
			}
		}
		out = append(out, row)
	}
	return out
}
