// Package tokenizer provides the len_tokens(text, encoding) oracle used
// throughout the segmenter: every budget in this module is expressed in
// tokens, never bytes or characters.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Supported encodings. Segmenters only ever need these two; callers that
// want a different encoding for embedding-model accounting can still reach
// tiktoken-go directly.
const (
	CL100kBase = "cl100k_base"
	O200kBase  = "o200k_base"
)

var (
	mu    sync.Mutex
	cache = map[string]*tiktoken.Tiktoken{}
)

func get(encoding string) (*tiktoken.Tiktoken, error) {
	mu.Lock()
	defer mu.Unlock()
	if enc, ok := cache[encoding]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load encoding %s: %w", encoding, err)
	}
	cache[encoding] = enc
	return enc, nil
}

// Count returns the number of tokens text encodes to under the named
// encoding. An unknown encoding name returns an error rather than silently
// falling back, since callers use the count as a hard budget.
func Count(text, encoding string) (int, error) {
	enc, err := get(encoding)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// MustCount is Count but panics on an unknown encoding. Reserved for call
// sites that only ever pass CL100kBase/O200kBase literals.
func MustCount(text, encoding string) int {
	n, err := Count(text, encoding)
	if err != nil {
		panic(err)
	}
	return n
}

// LengthFunc is the injection point segmenters use instead of assuming
// tokens==characters. CountingFunc adapts Count to this shape for a fixed
// encoding.
type LengthFunc func(text string) (int, error)

// CountingFunc returns a LengthFunc bound to one encoding.
func CountingFunc(encoding string) LengthFunc {
	return func(text string) (int, error) {
		return Count(text, encoding)
	}
}
