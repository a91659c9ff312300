package ingest

import "strings"

// Splitter cuts text into overlapping chunks, preferring natural boundaries.
// Separators are tried in order; a later one is only used on pieces the
// earlier ones could not keep within the size bound.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
		// paragraph, line, sentence, word, character
		separators: []string{"\n\n", "\n", ". ", " ", ""},
	}
}

// Split returns chunks of at most chunkSize characters (oversized only when
// no separator at all fits), consecutive chunks sharing up to overlap
// characters of trailing context.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = ""
			remaining = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitKeepingSeparator(text, sep)

	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// splitKeepingSeparator splits text by sep, reattaching the separator to the
// front of the following piece so no characters are lost across chunks.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

// merge packs small splits into chunks up to chunkSize, carrying at most
// overlap characters of the previous chunk into the next one.
func (s *Splitter) merge(splits []string) []string {
	var docs []string
	var current []string
	total := 0
	for _, d := range splits {
		if total+len(d) > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+len(d) > s.chunkSize && total > 0) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, d)
		total += len(d)
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
