package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ytharvest/internal/catalog"
	"ytharvest/internal/logging"
	"ytharvest/internal/services"
)

func TestChannelFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.csv")
	table := NewChannelFile(path)
	ctx := context.Background()

	in := []catalog.Channel{
		{ID: "UC1", Title: "First, with comma", SubscriberCount: 1200, VideoCount: 7, ViewCount: 9000, Country: "US"},
		{ID: "UC2", Title: "Second", SubscriberCount: 9999},
	}
	if err := table.SaveChannels(ctx, in); err != nil {
		t.Fatalf("SaveChannels: %v", err)
	}
	out, err := table.LoadChannels(ctx)
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != strings.Join(catalog.ChannelColumns, ",") {
		t.Fatalf("unexpected header %q", header)
	}
}

func TestChannelFileMissingIsMissingInput(t *testing.T) {
	table := NewChannelFile(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := table.LoadChannels(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("missing channel table must be fatal")
	}
}

func TestChannelFileToleratesLooseRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.csv")
	content := "\ufeffuploader_country,channelId,subscriberCount,title\n" +
		"gb,UC1,1500.0,One\n" +
		",,200,Blank id\n" +
		"us,UC2,n/a,Two\n" +
		"xx-nope,UC3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := NewChannelFile(path).LoadChannels(context.Background())
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	want := []catalog.Channel{
		{ID: "UC1", Title: "One", SubscriberCount: 1500, Country: "GB"},
		{ID: "UC2", Title: "Two", Country: "US"},
		{ID: "UC3", Country: "XX-NOPE"},
	}
	if !reflect.DeepEqual(want, out) {
		t.Fatalf("got %+v\nwant %+v", out, want)
	}
}

func TestChannelFileRequiresIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.csv")
	if err := os.WriteFile(path, []byte("title\nx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewChannelFile(path).LoadChannels(context.Background())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOutputFileWritesOneRowPerChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "videos.csv")
	views := int64(42)
	rows := []catalog.Row{
		{Channel: catalog.Channel{ID: "A", Title: "Alpha"}},
		{
			Channel:  catalog.Channel{ID: "C", Title: "Gamma", SubscriberCount: 1500},
			Video:    &catalog.Video{ID: "vc", Title: "Top 5!!", ViewCount: &views},
			Features: &catalog.Features{TitleWordCount: 2, TitlePunctuationCount: 2, DurationSeconds: 150, DayOfWeek: "Monday"},
		},
	}
	if err := NewOutputFile(path).WriteRows(context.Background(), rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	header, records, err := readTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(header, catalog.OutputColumns) {
		t.Fatalf("header mismatch: %v", header)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}
	col := columnIndex(header)
	if got := records[0][col["videoId"]]; got != "" {
		t.Fatalf("unresolved row has video id %q", got)
	}
	if got := records[0][col[catalog.ColChannelTitle]]; got != "Alpha" {
		t.Fatalf("channel_title = %q", got)
	}
	if got := records[1][col["video_duration"]]; got != "150" {
		t.Fatalf("video_duration = %q", got)
	}
	if got := records[1][col["like_count"]]; got != "" {
		t.Fatalf("absent like_count rendered as %q", got)
	}
	if got := records[1][col["view_count"]]; got != "42" {
		t.Fatalf("view_count = %q", got)
	}
}

func TestConcatProjectsByHeaderOfFirstFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "low.csv")
	second := filepath.Join(dir, "high.csv")
	missing := filepath.Join(dir, "mid.csv")
	out := filepath.Join(dir, "all.csv")

	write := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(first, "videoId,channelId,view_count\nv1,A,10\n")
	write(second, "channelId,extra,videoId\nB,ignored,v2\nC,x,v3\n")

	report, err := Concat([]string{missing, first, second}, out, logging.NewNop())
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if !report.Written || report.Rows != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !reflect.DeepEqual(report.Skipped, []string{missing}) {
		t.Fatalf("skipped = %v", report.Skipped)
	}

	header, records, err := readTable(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(header, []string{"videoId", "channelId", "view_count"}) {
		t.Fatalf("header = %v", header)
	}
	want := [][]string{{"v1", "A", "10"}, {"v2", "B", ""}, {"v3", "C", ""}}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %v", records)
	}
}

func TestConcatWithoutInputsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "all.csv")
	report, err := Concat([]string{filepath.Join(dir, "a.csv")}, out, nil)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if report.Written {
		t.Fatal("expected nothing written")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output should not exist, stat err = %v", err)
	}
}
