package cryptox

import "fmt"

// DefaultChunkSize is the buffer size ProcessChunks uses when the caller
// passes a non-positive size.
const DefaultChunkSize = 1024 * 1024

// ProcessChunks splits data into fixed-size chunks, passes each chunk to fn
// and concatenates the results. It performs no cryptography itself; it
// exists so a future streaming codec can plug in a per-chunk transform
// without changing callers.
func ProcessChunks(data []byte, chunkSize int, fn func(chunk []byte) ([]byte, error)) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	out := make([]byte, 0, len(data))
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		processed, err := fn(data[start:end])
		if err != nil {
			return nil, fmt.Errorf("chunk at offset %d: %w", start, err)
		}
		out = append(out, processed...)
	}
	return out, nil
}
