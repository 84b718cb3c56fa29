// Package chunker splits document text into bounded-size, sentence-respecting
// segments. Chunks are addressed by ordinal position elsewhere in the system,
// so the split is strictly deterministic: the same (text, maxSize) input
// always yields the identical sequence.
package chunker

import "strings"

// separator joins sentences within a chunk.
const separator = " "

// Split divides text into chunks of at most maxSize bytes, never breaking a
// sentence across chunks. A sentence ends at a period followed by whitespace
// (or at end of input). Sentences are accumulated greedily; when adding the
// next sentence would exceed maxSize, the current buffer is flushed as a
// chunk. Chunks are trimmed of leading and trailing whitespace.
//
// A single sentence longer than maxSize is emitted as one oversized chunk;
// splitting mid-sentence would break chunk-index reproducibility for little
// retrieval benefit. Empty input yields zero chunks.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder

	for _, sentence := range sentences {
		if buf.Len() == 0 {
			buf.WriteString(sentence)
			continue
		}

		if buf.Len()+len(separator)+len(sentence) > maxSize {
			chunks = appendChunk(chunks, buf.String())
			buf.Reset()
			buf.WriteString(sentence)
			continue
		}

		buf.WriteString(separator)
		buf.WriteString(sentence)
	}

	return appendChunk(chunks, buf.String())
}

// splitSentences cuts text at each period followed by whitespace.
// The period stays with its sentence; the separating whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '.' {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
