package forward

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/relaymesh/inference-gateway/internal/awssig"
	"github.com/relaymesh/inference-gateway/internal/observe"
	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/utils"
)

// streamBufferSize is the per-request copy buffer for response bytes.
const streamBufferSize = 32 * 1024

// maxSignedBodySize bounds request bodies that must be buffered for
// SigV4 signing. Only applies when the Bedrock signer is enabled.
const maxSignedBodySize = 20 << 20

// ObserverFactory builds the usage observer once response headers are
// known. Returning nil means the request is not observed.
type ObserverFactory func(respHeader http.Header) *observe.Observer

// Forwarder executes routed requests against their upstream origin.
type Forwarder struct {
	client *http.Client
	signer *awssig.Signer
}

// New creates a Forwarder around the shared upstream client.
// signer may be nil; it only applies to aws-bedrock requests.
func New(client *http.Client, signer *awssig.Signer) *Forwarder {
	return &Forwarder{client: client, signer: signer}
}

// Forward sends the request upstream and streams the response back,
// returning the upstream status code. An error return means nothing was
// written downstream yet, so the caller still owns the response (502
// path). Once headers are written, failures are logged and the stream
// simply ends.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, d routing.RouteDecision, obsFactory ObserverFactory) (int, error) {
	out, err := f.buildRequest(r, d)
	if err != nil {
		return 0, err
	}

	log.Debug().
		Str("provider", d.Provider).
		Str("target", d.TargetURI()).
		Str("authorization", utils.MaskKey(r.Header.Get("Authorization"))).
		Msg("forwarding request")

	resp, err := f.client.Do(out)
	if err != nil {
		return 0, fmt.Errorf("upstream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	copyResponseHeaders(w, resp.Header)
	w.WriteHeader(resp.StatusCode)

	var obs *observe.Observer
	if obsFactory != nil {
		obs = obsFactory(resp.Header)
	}
	defer obs.Close()

	flusher, canFlush := w.(http.Flusher)
	buf := make([]byte, streamBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, writeErr := w.Write(chunk); writeErr != nil {
				log.Debug().Err(writeErr).Msg("client disconnected mid-stream")
				return resp.StatusCode, nil
			}
			if canFlush {
				flusher.Flush()
			}
			// Downstream write always precedes observation.
			obs.Observe(resp.Header, chunk)
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Debug().Err(readErr).Str("provider", d.Provider).Msg("upstream read ended with error")
			}
			return resp.StatusCode, nil
		}
	}
}

// buildRequest applies the transformer: sanitized headers, pinned Host,
// strategy headers, rewritten URI. The body streams through untouched
// unless SigV4 signing requires the payload hash.
func (f *Forwarder) buildRequest(r *http.Request, d routing.RouteDecision) (*http.Request, error) {
	out, err := http.NewRequestWithContext(r.Context(), r.Method, d.TargetURI(), r.Body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	out.ContentLength = r.ContentLength

	out.Header = sanitizeHeaders(r.Header)
	mergeExtraHeaders(out.Header, d.ExtraHeaders)
	out.Host = d.Host

	if f.signer != nil && f.signer.Enabled() && d.Provider == "aws-bedrock" {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBodySize+1))
		if err != nil {
			return nil, fmt.Errorf("read body for signing: %w", err)
		}
		if len(body) > maxSignedBodySize {
			return nil, fmt.Errorf("request body exceeds signing limit")
		}
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
		if err := f.signer.Sign(r.Context(), out, body, d.Metadata[routing.MetadataRegion]); err != nil {
			return nil, fmt.Errorf("sign bedrock request: %w", err)
		}
	}

	return out, nil
}

// copyResponseHeaders mirrors upstream response headers verbatim.
func copyResponseHeaders(w http.ResponseWriter, src http.Header) {
	for name, values := range src {
		w.Header()[name] = values
	}
}
