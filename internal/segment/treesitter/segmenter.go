// Package treesitter implements C3, the concrete-syntax-tree-driven
// segmenter: per-language target collection, dedup by coverage, gap
// filling, and size normalization over line and token budgets.
package treesitter

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/segment"
)

var errNilTree = errors.New("treesitter: parse produced a nil tree")

const defaultMaxDepth = 5

// Segmenter is C3 for one language.
type Segmenter struct {
	def *languageDef
}

// New returns a factory bound to the named language ("go", "python", ...).
// Panics if the name wasn't registered in languages.go — a programmer
// error, since factories are only ever installed by RegisterAll below.
func New(langName string) segment.Factory {
	def, ok := languageDefs[langName]
	if !ok {
		panic("treesitter: unknown language " + langName)
	}
	return func() segment.Segmenter { return &Segmenter{def: def} }
}

// RegisterAll binds every language's extensions into reg, first-registration
// wins per C4.
func RegisterAll(reg *segment.Registry) {
	for name, def := range languageDefs {
		factory := New(name)
		for _, ext := range def.Extensions {
			reg.Register(ext, factory)
		}
	}
}

// Invalid implements the validity gate (spec.md §4.3 step 1): the text is
// invalid for this segmenter if parsing it produces any ERROR node.
func (s *Segmenter) Invalid(text string) bool {
	root, err := parse([]byte(text), s.def.Language)
	if err != nil || root == nil {
		return true
	}
	return root.walkHasError()
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

	source := []byte(text)
	root, err := parse(source, s.def.Language)
	if err != nil {
		return nil, err
	}

	totalLines := strings.Count(text, "\n") + 1

	targets := collectTargets(root, s.def.NodeTypes, s.def.RecursionNodeTypes, defaultMaxDepth)
	accepted := dedupByCoverage(targets)

	type lineSpan struct {
		start, end int // 1-based inclusive
	}
	chunks := make([]lineSpan, 0, len(accepted))
	for _, t := range accepted {
		chunks = append(chunks, lineSpan{start: t.StartLine, end: t.EndLine})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].start < chunks[j].start })

	// Gap filling (spec.md §4.3 step 4): cover every line not inside an
	// accepted chunk with one verbatim chunk.
	filled := make([]lineSpan, 0, len(chunks)+1)
	cursor := 1
	for _, c := range chunks {
		if c.start > cursor {
			filled = append(filled, lineSpan{start: cursor, end: c.start - 1})
		}
		filled = append(filled, c)
		if c.end+1 > cursor {
			cursor = c.end + 1
		}
	}
	if cursor <= totalLines {
		filled = append(filled, lineSpan{start: cursor, end: totalLines})
	}

	lines := strings.Split(text, "\n")
	lineText := func(start, end int) string {
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start > end {
			return ""
		}
		return strings.Join(lines[start-1:end], "\n")
	}

	// Drop whitespace-only gap-filled spans before size normalization.
	nonEmpty := filled[:0]
	for _, c := range filled {
		if strings.TrimSpace(lineText(c.start, c.end)) != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	filled = nonEmpty

	// Split large chunks (spec.md §4.3 step 5, split-large).
	normalized := make([]lineSpan, 0, len(filled))
	for _, c := range filled {
		normalized = append(normalized, splitLarge(c.start, c.end, opts.MaxChunkSize)...)
	}

	// Merge small chunks (spec.md §4.3 step 5, merge-small).
	normalized = mergeSmall(normalized, opts.MaxChunkSize, opts.MinChunkSize)

	segments := make([]model.CodeSegment, 0, len(normalized))
	lengthFunc := opts.LengthFunc
	for _, c := range normalized {
		code := lineText(c.start, c.end)
		if strings.TrimSpace(code) == "" {
			continue
		}
		if opts.MaxTokens > 0 && lengthFunc != nil {
			pieces, err := tokenSplit(code, c.start, opts.MaxTokens, lengthFunc)
			if err != nil {
				return nil, err
			}
			segments = append(segments, pieces...)
			continue
		}
		segments = append(segments, model.CodeSegment{Code: code, Start: c.start, End: c.end})
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	return segments, nil
}

// collectTargets implements spec.md §4.3 step 2: BFS from root's children,
// bounded by maxDepth, pushing node-type matches and descending only
// through recursion-type matches.
func collectTargets(root *node, nodeTypes, recursionTypes map[string]bool, maxDepth int) []*node {
	type item struct {
		n     *node
		depth int
	}
	var queue []item
	for _, c := range root.Children {
		queue = append(queue, item{n: c, depth: 1})
	}

	var targets []*node
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if nodeTypes[cur.n.Type] {
			targets = append(targets, cur.n)
		}
		if cur.depth < maxDepth && recursionTypes[cur.n.Type] {
			for _, c := range cur.n.Children {
				queue = append(queue, item{n: c, depth: cur.depth + 1})
			}
		}
	}
	return targets
}

// dedupByCoverage implements spec.md §4.3 step 3.
func dedupByCoverage(targets []*node) []*node {
	sorted := make([]*node, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].EndLine > sorted[j].EndLine
	})

	var accepted []*node
	for _, t := range sorted {
		contained := false
		for _, a := range accepted {
			if t.StartLine >= a.StartLine && t.EndLine <= a.EndLine {
				contained = true
				break
			}
		}
		if !contained {
			accepted = append(accepted, t)
		}
	}
	return accepted
}

// splitLarge implements spec.md §4.3 step 5's split-large-chunks pass.
func splitLarge(start, end, maxChunkSize int) []struct{ start, end int } {
	lines := end - start + 1
	if lines <= maxChunkSize {
		return []struct{ start, end int }{{start, end}}
	}

	n := int(math.Max(1, math.Round(float64(lines)/float64(maxChunkSize))))
	for n < lines && lines/n > maxChunkSize {
		n++
	}
	if n > lines {
		n = lines
	}

	base := lines / n
	extra := lines % n

	out := make([]struct{ start, end int }, 0, n)
	cursor := start
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, struct{ start, end int }{cursor, cursor + size - 1})
		cursor += size
	}
	return out
}

type span = struct{ start, end int }

// mergeSmall implements spec.md §4.3 step 5's merge-small-chunks pass: an
// iterative fixed point that absorbs undersized chunks into whichever
// neighbor brings the merged size closest to the target chunk size.
func mergeSmall(chunks []span, maxChunkSize, minChunkSize int) []span {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(chunks); i++ {
			size := chunks[i].end - chunks[i].start + 1
			if size >= minChunkSize {
				continue
			}

			bestIdx := -1
			bestDiff := math.MaxInt32
			tryNeighbor := func(idx int) {
				if idx < 0 || idx >= len(chunks) || idx == i {
					return
				}
				neighborSize := chunks[idx].end - chunks[idx].start + 1
				inIdealBand := neighborSize >= int(0.8*float64(maxChunkSize)) && neighborSize <= int(1.2*float64(maxChunkSize))
				if inIdealBand {
					return
				}
				mergedStart, mergedEnd := chunks[i].start, chunks[i].end
				if chunks[idx].start < mergedStart {
					mergedStart = chunks[idx].start
				}
				if chunks[idx].end > mergedEnd {
					mergedEnd = chunks[idx].end
				}
				mergedSize := mergedEnd - mergedStart + 1
				if mergedSize > maxChunkSize {
					return
				}
				diff := mergedSize - maxChunkSize
				if diff < 0 {
					diff = -diff
				}
				if diff < bestDiff {
					bestDiff = diff
					bestIdx = idx
				}
			}
			tryNeighbor(i - 1)
			tryNeighbor(i + 1)

			if bestIdx == -1 && size < minChunkSize/2 && i > 0 {
				bestIdx = i - 1
			}
			if bestIdx == -1 {
				continue
			}

			lo, hi := i, bestIdx
			if hi < lo {
				lo, hi = hi, lo
			}
			merged := span{start: chunks[lo].start, end: chunks[hi].end}
			if chunks[i].start < merged.start {
				merged.start = chunks[i].start
			}
			if chunks[i].end > merged.end {
				merged.end = chunks[i].end
			}

			rest := make([]span, 0, len(chunks)-1)
			rest = append(rest, chunks[:lo]...)
			rest = append(rest, merged)
			rest = append(rest, chunks[hi+1:]...)
			chunks = rest
			changed = true
			break
		}
	}
	return chunks
}

// tokenSplit implements spec.md §4.3 step 6: recursively halve a
// token-overflowing chunk, preferring a line-count split; a single-line
// chunk is instead binary-searched on character prefix length.
func tokenSplit(code string, startLine, maxTokens int, lengthFunc func(string) (int, error)) ([]model.CodeSegment, error) {
	n, err := lengthFunc(code)
	if err != nil {
		return nil, err
	}
	if n <= maxTokens {
		return []model.CodeSegment{{Code: code, Start: startLine, End: startLine + strings.Count(code, "\n")}}, nil
	}

	lines := strings.Split(code, "\n")
	if len(lines) == 1 {
		pieces, err := binarySplitByChars(code, maxTokens, lengthFunc)
		if err != nil {
			return nil, err
		}
		out := make([]model.CodeSegment, len(pieces))
		for i, p := range pieces {
			out[i] = model.CodeSegment{Code: p, Start: startLine, End: startLine, Block: i + 1}
		}
		return out, nil
	}

	mid := len(lines) / 2
	left := strings.Join(lines[:mid], "\n")
	right := strings.Join(lines[mid:], "\n")

	leftSegs, err := tokenSplit(left, startLine, maxTokens, lengthFunc)
	if err != nil {
		return nil, err
	}
	rightStart := startLine + mid
	rightSegs, err := tokenSplit(right, rightStart, maxTokens, lengthFunc)
	if err != nil {
		return nil, err
	}

	block := 1
	for i := range leftSegs {
		leftSegs[i].Block = block
		block++
	}
	for i := range rightSegs {
		rightSegs[i].Block = block
		block++
	}
	return append(leftSegs, rightSegs...), nil
}

func binarySplitByChars(text string, maxTokens int, lengthFunc func(string) (int, error)) ([]string, error) {
	var pieces []string
	pos := 0
	for pos < len(text) {
		lo, hi := 1, len(text)-pos
		best := 1
		for lo <= hi {
			mid := (lo + hi) / 2
			n, err := lengthFunc(text[pos : pos+mid])
			if err != nil {
				return nil, err
			}
			if n <= maxTokens {
				best = mid
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
		pieces = append(pieces, text[pos:pos+best])
		pos += best
	}
	return pieces, nil
}
