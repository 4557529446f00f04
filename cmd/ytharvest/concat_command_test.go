package main

import (
	"path/filepath"
	"testing"

	"ytharvest/internal/testsupport"
)

func TestConcatMergesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "band1.csv")
	second := filepath.Join(dir, "band2.csv")
	testsupport.WriteFile(t, first, "channelId,videoId\nA,v1\n")
	testsupport.WriteFile(t, second, "videoId,channelId\nv2,B\n")
	out := filepath.Join(dir, "merged.csv")

	stdout, _, err := runCLI(t, []string{"concat", "-o", out, first, filepath.Join(dir, "missing.csv"), second}, "")
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	requireContains(t, stdout, "missing.csv (missing or empty)")
	requireContains(t, stdout, "2 files, 2 rows")

	rows := testsupport.ReadCSV(t, out)
	if len(rows) != 2 || rows[1]["channelId"] != "B" || rows[1]["videoId"] != "v2" {
		t.Fatalf("unexpected merged rows: %v", rows)
	}
}

func TestConcatWithNoInputsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.csv")

	stdout, _, err := runCLI(t, []string{"concat", "--output", out, filepath.Join(dir, "nope.csv")}, "")
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	requireContains(t, stdout, "nothing written")
}

func TestConcatRequiresOutput(t *testing.T) {
	if _, _, err := runCLI(t, []string{"concat", "in.csv"}, ""); err == nil {
		t.Fatal("expected missing --output to fail")
	}
}
