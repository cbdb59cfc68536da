// Package tokenizer provides deterministic token counting and truncation
// backed by a byte-pair encoding identical to the remote embedding
// provider's billing tokenizer (§4.1).
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	ragerrors "clausebase/internal/rag/errors"
)

// defaultEncoding is the tiktoken encoding used for a model name that
// tiktoken's model table does not know. Every model in the text-embedding-3
// family (and text-embedding-ada-002) bills against cl100k_base.
const defaultEncoding = "cl100k_base"

var (
	mu          sync.Mutex
	encodingFor = map[string]*tiktoken.Tiktoken{}
)

// encodingForModel looks up (and memoizes) the tiktoken encoding for a
// model identifier. Encodings are looked up once per model id, per §4.1.
func encodingForModel(model string) (*tiktoken.Tiktoken, error) {
	mu.Lock()
	defer mu.Unlock()

	if enc, ok := encodingFor[model]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fall back to the encoding shared by the entire embedding-3
		// family rather than failing outright; a handful of local model
		// aliases ("local", "m-small", "m-large" in tests) are not known
		// to tiktoken's model table.
		enc, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, ragerrors.Internalf("load tokenizer encoding for model %q: %v", model, err)
		}
	}
	encodingFor[model] = enc
	return enc, nil
}

// CountTokens counts the number of BPE tokens text would encode to under
// model's billing tokenizer. CountTokens("", model) == 0.
func CountTokens(text string, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := encodingForModel(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// TruncateToTokens truncates text to at most maxTokens tokens. When text is
// already within the limit it is returned unchanged. Truncation decodes the
// kept tokens back to a string so a multi-byte code point is never split.
func TruncateToTokens(text string, maxTokens int, model string) (string, error) {
	if text == "" || maxTokens <= 0 {
		if maxTokens <= 0 {
			return "", nil
		}
		return text, nil
	}
	enc, err := encodingForModel(model)
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	out := enc.Decode(tokens[:maxTokens])
	// A token boundary can fall inside a multi-byte code point; drop the
	// trailing bytes of such a partial code point.
	for len(out) > 0 && !utf8.ValidString(out) {
		out = out[:len(out)-1]
	}
	return out, nil
}

// TailTokens returns the text decoded from the trailing n tokens of text's
// encoding (used to build chunk overlap, §4.4 step 4). If text encodes to
// fewer than n tokens, the whole text is returned.
func TailTokens(text string, n int, model string) (string, error) {
	if text == "" || n <= 0 {
		return "", nil
	}
	enc, err := encodingForModel(model)
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text, nil
	}
	return enc.Decode(tokens[len(tokens)-n:]), nil
}
