package observe

import "bytes"

// dataPrefix marks an SSE payload line. Lines without it are discarded.
var dataPrefix = []byte("data: ")

// doneSentinel terminates OpenAI-style streams without carrying JSON.
var doneSentinel = []byte("[DONE]")

// sseScanner reassembles LF-terminated lines across arbitrary chunk
// boundaries. A partial line is retained until later bytes complete it;
// the terminal fragment is surfaced once by Flush on stream close.
type sseScanner struct {
	buf []byte
}

// Feed appends a chunk and returns every completed line, with the
// terminating LF and any trailing CR stripped.
func (s *sseScanner) Feed(chunk []byte) [][]byte {
	s.buf = append(s.buf, chunk...)

	var lines [][]byte
	for {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			return lines
		}
		line := bytes.TrimSuffix(s.buf[:idx], []byte("\r"))
		out := make([]byte, len(line))
		copy(out, line)
		lines = append(lines, out)
		s.buf = s.buf[idx+1:]
	}
}

// Flush returns the unterminated tail, or nil when the stream ended on a
// line boundary.
func (s *sseScanner) Flush() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	tail := bytes.TrimSuffix(s.buf, []byte("\r"))
	s.buf = nil
	return tail
}

// ssePayload extracts the JSON payload from a data: line.
// Returns nil for non-data lines and for the [DONE] sentinel.
func ssePayload(line []byte) []byte {
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 || bytes.Equal(payload, doneSentinel) {
		return nil
	}
	return payload
}
