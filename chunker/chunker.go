// Package chunker splits long text into overlapping token windows so each
// piece fits the embedding model's input limit.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/botirk38/embedcache/tokenizer"
)

// Config controls the window size and overlap, both in tokens.
type Config struct {
	// ChunkSize is the number of tokens per window.
	ChunkSize int
	// Overlap is how many tokens consecutive windows share.
	Overlap int
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.Overlap < 0 {
		return ErrInvalidOverlap
	}
	if c.Overlap >= c.ChunkSize {
		return ErrOverlapTooLarge
	}
	return nil
}

// Chunk is one window of the original text.
type Chunk struct {
	Text       string
	StartToken int
	EndToken   int
	Index      int
}

// Splitter cuts text into fixed-size token windows.
type Splitter struct {
	config  Config
	counter *tokenizer.Counter
}

// NewSplitter creates a Splitter.
func NewSplitter(config Config, counter *tokenizer.Counter) (*Splitter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}
	if counter == nil {
		return nil, ErrNoCounter
	}
	return &Splitter{config: config, counter: counter}, nil
}

// Split returns the windows covering text. Text that fits in one window comes
// back unchanged as a single chunk. Window edges are moved off tokens that
// hold part of a multi-byte rune, so every chunk is valid UTF-8.
func (s *Splitter) Split(text string) ([]Chunk, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	ids, err := s.counter.Encode(text)
	if err != nil {
		return nil, err
	}
	if len(ids) <= s.config.ChunkSize {
		return []Chunk{{Text: text, StartToken: 0, EndToken: len(ids), Index: 0}}, nil
	}

	var chunks []Chunk
	for start := 0; ; {
		piece, first, end, err := s.decodeWindow(ids, start, min(start+s.config.ChunkSize, len(ids)))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(chunks), err)
		}
		chunks = append(chunks, Chunk{
			Text:       piece,
			StartToken: first,
			EndToken:   end,
			Index:      len(chunks),
		})
		if end == len(ids) {
			return chunks, nil
		}
		start = max(end-s.config.Overlap, first+1)
	}
}

// decodeWindow decodes ids[start:end], dropping edge tokens while either end
// of the text is a partial rune. It returns the bounds it settled on.
func (s *Splitter) decodeWindow(ids []uint, start, end int) (string, int, int, error) {
	for {
		piece, err := s.counter.Decode(ids[start:end])
		if err != nil {
			return "", 0, 0, err
		}
		if utf8.ValidString(piece) {
			return piece, start, end, nil
		}
		if end-start > 1 {
			if r, size := utf8.DecodeLastRuneInString(piece); r == utf8.RuneError && size <= 1 {
				end--
				continue
			}
			if r, size := utf8.DecodeRuneInString(piece); r == utf8.RuneError && size <= 1 {
				start++
				continue
			}
		}
		return strings.ToValidUTF8(piece, ""), start, end, nil
	}
}
