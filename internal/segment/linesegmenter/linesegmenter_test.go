package linesegmenter

import (
	"strings"
	"testing"

	"github.com/Aman-CERP/codevector/internal/segment"
)

func charLength(text string) (int, error) { return len(text), nil }

func TestSegmentEmptyText(t *testing.T) {
	segs, err := New().Segment("   \n\n  ", segment.DefaultOptions())
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) != 0 {
		t.Fatalf("expected no segments for whitespace-only input, got %d", len(segs))
	}
}

func TestSegmentRespectsLineBound(t *testing.T) {
	var lines []string
	for i := 0; i < 300; i++ {
		lines = append(lines, "x = 1")
	}
	text := strings.Join(lines, "\n")

	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength
	segs, err := New().Segment(text, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment")
	}
	for _, s := range segs {
		if s.End-s.Start+1 > opts.MaxChunkSize && s.Block == 0 {
			t.Fatalf("non-forced segment exceeds max chunk size: %+v", s)
		}
	}
}

func TestSegmentCoverageOrder(t *testing.T) {
	text := "func a() {\n  return 1\n}\n\nfunc b() {\n  return 2\n}\n"
	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength
	segs, err := New().Segment(text, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	last := 0
	for _, s := range segs {
		if s.Start < last {
			t.Fatalf("segments not in non-decreasing start-line order: %+v", segs)
		}
		if s.Start < 1 || s.End < s.Start {
			t.Fatalf("invalid line bounds: %+v", s)
		}
		last = s.Start
	}
}

func TestSegmentForcesOverlongLine(t *testing.T) {
	text := strings.Repeat("a", 500)
	opts := segment.Options{MaxChunkSize: 50, MinChunkSize: 10, MaxTokens: 40, LengthFunc: charLength}
	segs, err := New().Segment(text, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) < 2 {
		t.Fatalf("expected the overlong line to be force-split into multiple pieces, got %d", len(segs))
	}
	for _, s := range segs {
		n, _ := charLength(s.Code)
		if n > opts.MaxTokens {
			t.Fatalf("forced segment exceeds token bound: %d > %d", n, opts.MaxTokens)
		}
		if s.Block < 1 {
			t.Fatalf("forced segment missing block number: %+v", s)
		}
	}
}

func TestInvalidAlwaysFalse(t *testing.T) {
	if New().Invalid("anything") {
		t.Fatalf("line segmenter must never report invalid input")
	}
}
