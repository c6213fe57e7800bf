package observe

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// decompressor returns a wrapper that decompresses the copy stream for
// the given Content-Encoding token. The downstream stream is never
// decompressed — only the parser's copy. Unknown encodings return an
// error, which disables observation without failing the request.
func decompressor(encoding string) (func(io.Reader) io.Reader, error) {
	switch encoding {
	case "", "identity":
		return func(r io.Reader) io.Reader { return r }, nil
	case "gzip":
		return func(r io.Reader) io.Reader { return &lazyGzipReader{src: r} }, nil
	case "deflate":
		return func(r io.Reader) io.Reader { return flate.NewReader(r) }, nil
	case "br":
		return func(r io.Reader) io.Reader { return brotli.NewReader(r) }, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// lazyGzipReader defers gzip header parsing to the first Read so the
// decompressor can be constructed before any bytes arrive.
type lazyGzipReader struct {
	src io.Reader
	zr  *gzip.Reader
}

func (r *lazyGzipReader) Read(p []byte) (int, error) {
	if r.zr == nil {
		zr, err := gzip.NewReader(r.src)
		if err != nil {
			return 0, err
		}
		r.zr = zr
	}
	return r.zr.Read(p)
}
