// Package linesegmenter implements C2, the generic recursive line segmenter
// used as a fallback for unsupported or syntactically invalid files.
package linesegmenter

import (
	"sort"
	"strings"

	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/segment"
)

var defaultDelimiters = []string{"\n\n", "\n"}

// Segmenter is C2. It never reports invalid input; Invalid always returns
// false.
type Segmenter struct{}

// New returns a line segmenter. It satisfies segment.Factory.
func New() segment.Segmenter { return &Segmenter{} }

func (s *Segmenter) Invalid(string) bool { return false }

// span is a half-open [start,end) character range, tagged with whether it
// came from a forced split (and, if so, its block number within that
// logical chunk).
type span struct {
	start, end int
	forced     bool
	block      int
}

func (s *Segmenter) Segment(text string, opts segment.Options) ([]model.CodeSegment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = 50
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = 10
	}

	lineStarts := buildLineStarts(text)

	lengthFunc := opts.LengthFunc
	if lengthFunc == nil {
		lengthFunc = func(t string) (int, error) { return 0, nil }
	}

	needSplit := func(sp span) (bool, error) {
		lines := countLines(text, sp.start, sp.end)
		if lines > opts.MaxChunkSize {
			return true, nil
		}
		if opts.MaxTokens > 0 {
			n, err := lengthFunc(text[sp.start:sp.end])
			if err != nil {
				return false, err
			}
			if n > opts.MaxTokens {
				return true, nil
			}
		}
		return false, nil
	}

	var spans []span
	var walk func(sp span, delimiters []string) error
	walk = func(sp span, delimiters []string) error {
		if sp.start >= sp.end {
			return nil
		}
		slice := text[sp.start:sp.end]
		if strings.TrimSpace(slice) == "" {
			return nil
		}

		// Single-line overflow pass: if the whole slice is one line and it
		// alone busts the token budget, force-split it directly.
		if opts.MaxTokens > 0 && !strings.Contains(strings.Trim(slice, "\n"), "\n") {
			n, err := lengthFunc(slice)
			if err != nil {
				return err
			}
			if n > opts.MaxTokens {
				return forceSplitInto(&spans, text, sp, opts.MaxTokens, lengthFunc)
			}
		}

		need, err := needSplit(sp)
		if err != nil {
			return err
		}
		if !need {
			spans = append(spans, sp)
			return nil
		}

		if len(delimiters) == 0 {
			return forceSplitInto(&spans, text, sp, opts.MaxTokens, lengthFunc)
		}

		delim := delimiters[0]
		rest := delimiters[1:]
		parts := splitWithOffsets(slice, delim)
		if len(parts) <= 1 {
			// This delimiter didn't reduce anything; try the next one.
			return walk(sp, rest)
		}
		for _, p := range parts {
			if strings.TrimSpace(p.text) == "" {
				continue
			}
			childSpan := span{start: sp.start + p.offset, end: sp.start + p.offset + len(p.text)}
			if err := walk(childSpan, rest); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(span{start: 0, end: len(text)}, defaultDelimiters); err != nil {
		return nil, err
	}

	if opts.Merge {
		spans = mergeSpans(spans, text, opts, lengthFunc)
	}

	segments := make([]model.CodeSegment, 0, len(spans))
	for _, sp := range spans {
		code := text[sp.start:sp.end]
		if strings.TrimSpace(code) == "" {
			continue
		}
		startLine := lineOf(lineStarts, sp.start)
		endLine := lineOf(lineStarts, sp.end-1)
		if endLine < startLine {
			endLine = startLine
		}
		segments = append(segments, model.CodeSegment{
			Code:  code,
			Start: startLine,
			End:   endLine,
			Block: sp.block,
		})
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	return segments, nil
}

type offsetPart struct {
	text   string
	offset int
}

// splitWithOffsets splits s on delim and records each part's byte offset
// within s, so callers can recover absolute positions.
func splitWithOffsets(s, delim string) []offsetPart {
	parts := strings.Split(s, delim)
	out := make([]offsetPart, 0, len(parts))
	offset := 0
	for i, p := range parts {
		out = append(out, offsetPart{text: p, offset: offset})
		offset += len(p)
		if i < len(parts)-1 {
			offset += len(delim)
		}
	}
	return out
}

// forceSplitInto binary-searches the largest token-bounded prefix of
// text[sp.start:sp.end], repeating until the whole span is consumed.
// Stepping by maxTokens/10 brackets the search, per spec.md §4.2 step 4.
func forceSplitInto(spans *[]span, text string, sp span, maxTokens int, lengthFunc func(string) (int, error)) error {
	if maxTokens <= 0 {
		*spans = append(*spans, sp)
		return nil
	}
	step := maxTokens / 10
	if step < 1 {
		step = 1
	}
	block := 1
	pos := sp.start
	for pos < sp.end {
		remaining := text[pos:sp.end]
		lo, hi := 0, len(remaining)

		candidate := step
		if candidate > hi {
			candidate = hi
		}
		for candidate < hi {
			n, err := lengthFunc(remaining[:candidate])
			if err != nil {
				return err
			}
			if n > maxTokens {
				hi = candidate
				break
			}
			lo = candidate
			candidate += step
		}

		for lo < hi {
			mid := (lo + hi + 1) / 2
			n, err := lengthFunc(remaining[:mid])
			if err != nil {
				return err
			}
			if n <= maxTokens {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		if lo == 0 {
			lo = 1 // guarantee forward progress on a pathologically dense prefix
		}
		*spans = append(*spans, span{start: pos, end: pos + lo, forced: true, block: block})
		block++
		pos += lo
	}
	return nil
}

// mergeSpans implements the optional merge pass from spec.md §4.2 step 5.
func mergeSpans(spans []span, text string, opts segment.Options, lengthFunc func(string) (int, error)) []span {
	if len(spans) == 0 {
		return spans
	}
	merged := []span{spans[0]}
	for _, next := range spans[1:] {
		last := &merged[len(merged)-1]
		if last.forced != next.forced {
			merged = append(merged, next)
			continue
		}
		candidate := span{start: last.start, end: next.end, forced: last.forced}
		candLines := countLines(text, candidate.start, candidate.end)

		fitsBothBudgets := candLines <= opts.MaxChunkSize
		if fitsBothBudgets && opts.MaxTokens > 0 {
			n, err := lengthFunc(text[candidate.start:candidate.end])
			if err != nil || n > opts.MaxTokens {
				fitsBothBudgets = false
			}
		}

		lastLines := countLines(text, last.start, last.end)
		nextLines := countLines(text, next.start, next.end)
		eitherUndersized := lastLines < opts.MinChunkSize || nextLines < opts.MinChunkSize

		if fitsBothBudgets || (eitherUndersized && candLines <= opts.MaxChunkSize) {
			*last = candidate
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

func buildLineStarts(text string) []int {
	starts := []int{0}
	for i, c := range text {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the 1-based line number containing byte offset pos.
func lineOf(lineStarts []int, pos int) int {
	i := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > pos })
	return i // lineStarts[0]=0 is line 1, so the count of starts <= pos is the 1-based line number
}

func countLines(text string, start, end int) int {
	if start >= end {
		return 0
	}
	return strings.Count(text[start:end], "\n") + 1
}
