package treesitter

import (
	"strings"
	"testing"

	"github.com/Aman-CERP/codevector/internal/segment"
)

func charLength(text string) (int, error) { return len(text), nil }

const pySample = `import os


def top_one():
    return 1


def top_two():
    return 2


class Widget:
    def method_one(self):
        return 1

    def method_two(self):
        return 2
`

func TestPythonValidityGate(t *testing.T) {
	s := &Segmenter{def: languageDefs["python"]}
	if s.Invalid(pySample) {
		t.Fatalf("well-formed python reported invalid")
	}
	if !s.Invalid("def foo(:\n    pass\n") {
		t.Fatalf("malformed python should report invalid")
	}
}

func TestPythonFunctionsAndMethods(t *testing.T) {
	s := &Segmenter{def: languageDefs["python"]}
	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength
	// With the default MinChunkSize of 10, merge-small joins every chunk of
	// this 17-line sample into one segment; 1 keeps each target separate.
	opts.MinChunkSize = 1

	segs, err := s.Segment(pySample, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) < 4 {
		t.Fatalf("expected at least 4 segments (2 funcs + 2 methods), got %d: %+v", len(segs), segs)
	}
	for _, sg := range segs {
		if sg.Start < 1 || sg.End < sg.Start {
			t.Fatalf("invalid line range: %+v", sg)
		}
	}
	if segs[0].Start != 1 {
		t.Fatalf("expected the header/import gap-fill segment to start at line 1, got %d", segs[0].Start)
	}
}

const pyDecoratedSample = `import functools


@functools.lru_cache
def cached_one():
    return 1


class Widget:
    @staticmethod
    def helper():
        return 2
`

func TestPythonDecoratedDefinitionsAreCollected(t *testing.T) {
	def := languageDefs["python"]
	root, err := parse([]byte(pyDecoratedSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	if len(targets) == 0 {
		t.Fatalf("expected the top-level @lru_cache-decorated function to be collected as a target")
	}
	foundDecorated := false
	for _, tgt := range targets {
		if tgt.Type == "decorated_definition" {
			foundDecorated = true
		}
	}
	if !foundDecorated {
		t.Fatalf("expected a decorated_definition target, got types: %v", typesOf(targets))
	}
}

func typesOf(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type
	}
	return out
}

const tsExportSample = `import { z } from "zod";

export function double(x: number): number {
  return x * 2;
}

export const triple = (x: number): number => x * 3;
`

func TestTypeScriptExportStatementsAreCollected(t *testing.T) {
	def := languageDefs["typescript"]
	root, err := parse([]byte(tsExportSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	count := 0
	for _, tgt := range targets {
		if tgt.Type == "export_statement" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 export_statement targets (the exported function and the exported const), got %d: %v", count, typesOf(targets))
	}
}

func TestTSXExportStatementsAreCollected(t *testing.T) {
	def := languageDefs["tsx"]
	root, err := parse([]byte(tsExportSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	count := 0
	for _, tgt := range targets {
		if tgt.Type == "export_statement" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 export_statement targets, got %d: %v", count, typesOf(targets))
	}
}

const jsExportSample = `export function double(x) {
  return x * 2;
}

export const triple = (x) => x * 3;
`

func TestJavaScriptExportStatementsAreCollected(t *testing.T) {
	def := languageDefs["javascript"]
	root, err := parse([]byte(jsExportSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	count := 0
	for _, tgt := range targets {
		if tgt.Type == "export_statement" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 export_statement targets, got %d: %v", count, typesOf(targets))
	}
}

const javaSample = `public class Widget {
    private int value;

    public Widget(int value) {
        this.value = value;
    }

    public int getValue() {
        return value;
    }
}
`

func TestJavaSegmenterMethodsAndConstructors(t *testing.T) {
	s := &Segmenter{def: languageDefs["java"]}
	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength

	segs, err := s.Segment(javaSample, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment")
	}

	def := languageDefs["java"]
	root, err := parse([]byte(javaSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	if len(targets) < 2 {
		t.Fatalf("expected the constructor and getValue method to be collected as separate targets, got %d: %v", len(targets), typesOf(targets))
	}
}

const cssSample = `.widget {
  color: red;
}

@media (min-width: 600px) {
  .widget {
    color: blue;
  }
}
`

func TestCSSSegmenterRulesAndMediaStatements(t *testing.T) {
	s := &Segmenter{def: languageDefs["css"]}
	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength

	segs, err := s.Segment(cssSample, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment")
	}

	def := languageDefs["css"]
	root, err := parse([]byte(cssSample), def.Language)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	targets := collectTargets(root, def.NodeTypes, def.RecursionNodeTypes, defaultMaxDepth)
	foundRuleSet := false
	foundMedia := false
	for _, tgt := range targets {
		switch tgt.Type {
		case "rule_set":
			foundRuleSet = true
		case "media_statement":
			foundMedia = true
		}
	}
	if !foundRuleSet || !foundMedia {
		t.Fatalf("expected both a top-level rule_set and a media_statement target, got: %v", typesOf(targets))
	}
}

func TestGoSegmenterTopLevelDeclarations(t *testing.T) {
	src := "package main\n\nfunc A() int {\n\treturn 1\n}\n\nfunc B() int {\n\treturn 2\n}\n"
	s := &Segmenter{def: languageDefs["go"]}
	opts := segment.DefaultOptions()
	opts.LengthFunc = charLength
	// With the default MinChunkSize of 10, merge-small joins this 9-line file
	// into one segment; 1 keeps each function separate.
	opts.MinChunkSize = 1
	segs, err := s.Segment(src, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segs) < 2 {
		t.Fatalf("expected at least 2 function segments, got %d", len(segs))
	}
}

func TestSplitLargeRespectsMaxChunkSize(t *testing.T) {
	out := splitLarge(1, 130, 50)
	for _, c := range out {
		if c.end-c.start+1 > 50 {
			t.Fatalf("split piece exceeds max chunk size: %+v", c)
		}
	}
	total := 0
	for _, c := range out {
		total += c.end - c.start + 1
	}
	if total != 130 {
		t.Fatalf("split pieces don't cover all lines: got %d want 130", total)
	}
}

func TestMergeSmallAbsorbsUndersizedChunks(t *testing.T) {
	chunks := []span{{1, 2}, {3, 55}, {56, 57}}
	out := mergeSmall(chunks, 50, 10)
	// The 53-line middle chunk is inside the ideal band, so it is never a
	// merge candidate. The trailing 2-line chunk is under min/2 and is joined
	// to its predecessor; the leading one has no predecessor and stays.
	want := []span{{1, 2}, {3, 57}}
	if len(out) != len(want) {
		t.Fatalf("expected %+v, got %+v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %+v, got %+v", want, out)
		}
	}
}

func TestTokenSplitBoundsEverySegment(t *testing.T) {
	code := strings.Repeat("x", 300)
	segs, err := tokenSplit(code, 1, 40, charLength)
	if err != nil {
		t.Fatalf("tokenSplit: %v", err)
	}
	if len(segs) < 2 {
		t.Fatalf("expected the oversize chunk to be split into multiple pieces")
	}
	for _, sg := range segs {
		n, _ := charLength(sg.Code)
		if n > 40 {
			t.Fatalf("token-split piece exceeds budget: %d > 40", n)
		}
	}
}
