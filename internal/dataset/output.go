package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"ytharvest/internal/catalog"
	"ytharvest/internal/fileutil"
)

// OutputFile writes the merged output table as CSV.
type OutputFile struct {
	path string
}

var _ catalog.RowWriter = (*OutputFile)(nil)

// NewOutputFile returns a writer targeting path.
func NewOutputFile(path string) *OutputFile {
	return &OutputFile{path: path}
}

// Path returns the destination file.
func (o *OutputFile) Path() string {
	return o.path
}

// WriteRows replaces the output file with rows under the OutputColumns header.
func (o *OutputFile) WriteRows(ctx context.Context, rows []catalog.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := fileutil.WriteAtomic(o.path, 0o644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(catalog.OutputColumns); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(row.Record()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("dataset: write output %s: %w", o.path, err)
	}
	return nil
}
