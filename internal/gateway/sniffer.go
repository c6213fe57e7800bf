package gateway

import "io"

// sniffLimit bounds how much of a request body is retained for
// telemetry (model extraction, token estimation). The body itself
// streams through; only this prefix is copied.
const sniffLimit = 64 * 1024

// bodySniffer wraps a request body, retaining a bounded prefix and
// counting total bytes read.
type bodySniffer struct {
	src    io.ReadCloser
	prefix []byte
	read   int64
}

func newBodySniffer(src io.ReadCloser) *bodySniffer {
	return &bodySniffer{src: src}
}

func (s *bodySniffer) Read(p []byte) (int, error) {
	n, err := s.src.Read(p)
	if n > 0 {
		s.read += int64(n)
		if remain := sniffLimit - len(s.prefix); remain > 0 {
			take := n
			if take > remain {
				take = remain
			}
			s.prefix = append(s.prefix, p[:take]...)
		}
	}
	return n, err
}

func (s *bodySniffer) Close() error {
	return s.src.Close()
}

// snippet returns the retained prefix.
func (s *bodySniffer) snippet() []byte {
	return s.prefix
}

// total returns total bytes the upstream consumed.
func (s *bodySniffer) total() int64 {
	return s.read
}
