package observe

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

// feed pushes the stream through an observer in chunks of n bytes and
// returns everything the parser emitted.
func feed(t *testing.T, family Family, h http.Header, stream []byte, n int) []Sample {
	t.Helper()

	var samples []Sample
	obs := New(context.Background(), family, func(_ bool, s Sample) {
		samples = append(samples, s)
	})
	require.NotNil(t, obs)

	for i := 0; i < len(stream); i += n {
		end := i + n
		if end > len(stream) {
			end = len(stream)
		}
		obs.Observe(h, stream[i:end])
	}
	obs.Close()
	return samples
}

func TestObserver_NoneFamilyIsNil(t *testing.T) {
	obs := New(context.Background(), FamilyNone, nil)
	assert.Nil(t, obs)
	obs.Observe(header(), []byte("x")) // nil receiver must be safe
	obs.Close()
}

func TestObserver_SSEPartialFrameSingleEvent(t *testing.T) {
	stream := []byte("data: {\"usage\":{\"input_tokens\":3,\"output_tokens\":5}}\n")
	h := header("Content-Type", "text/event-stream")

	// Split arbitrarily across writes; exactly one event either way.
	for _, n := range []int{1, 2, 7, len(stream)} {
		samples := feed(t, FamilyAnthropic, h, stream, n)
		require.Len(t, samples, 1, "chunk size %d", n)
		assert.Equal(t, int64(3), samples[0].Tokens.Input)
		assert.Equal(t, int64(5), samples[0].Tokens.Output)
		assert.Equal(t, int64(8), samples[0].Tokens.Total)
	}
}

func TestObserver_OpenAIStreamingUsage(t *testing.T) {
	chunk, err := sjson.Set(`{"id":"x","model":"gpt-4"}`, "usage.prompt_tokens", 15)
	require.NoError(t, err)
	chunk, err = sjson.Set(chunk, "usage.completion_tokens", 87)
	require.NoError(t, err)
	chunk, err = sjson.Set(chunk, "usage.total_tokens", 102)
	require.NoError(t, err)

	stream := []byte("data: " + chunk + "\n\ndata: [DONE]\n\n")
	samples := feed(t, FamilyOpenAI, header("Content-Type", "text/event-stream"), stream, 13)

	require.Len(t, samples, 1)
	assert.Equal(t, "gpt-4", samples[0].Model)
	assert.Equal(t, int64(15), samples[0].Tokens.Input)
	assert.Equal(t, int64(87), samples[0].Tokens.Output)
	assert.Nil(t, samples[0].Cost)
}

func TestObserver_NonStreamingAnthropic(t *testing.T) {
	body := []byte(`{"model":"claude-3-5-sonnet-20241022","usage":{"input_tokens":100,"output_tokens":50}}`)
	samples := feed(t, FamilyAnthropic, header("Content-Type", "application/json"), body, 9)

	require.Len(t, samples, 1)
	assert.Equal(t, "claude-3-5-sonnet-20241022", samples[0].Model)
	assert.Equal(t, int64(150), samples[0].Tokens.Total)
	require.NotNil(t, samples[0].Cost)
	assert.Equal(t, "0.001050", samples[0].Cost.Total.String())
}

func TestObserver_NonStreamingBOMStripped(t *testing.T) {
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"model":"gpt-4o","usage":{"prompt_tokens":7,"completion_tokens":2}}`)...)
	samples := feed(t, FamilyOpenAI, header("Content-Type", "application/json"), body, len(body))

	require.Len(t, samples, 1)
	assert.Equal(t, int64(7), samples[0].Tokens.Input)
}

func TestObserver_GzipCopyStream(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"model":"gpt-4o","usage":{"prompt_tokens":11,"completion_tokens":4}}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	h := header("Content-Type", "application/json", "Content-Encoding", "gzip")
	samples := feed(t, FamilyOpenAI, h, buf.Bytes(), 5)

	require.Len(t, samples, 1)
	assert.Equal(t, int64(11), samples[0].Tokens.Input)
	assert.Equal(t, int64(4), samples[0].Tokens.Output)
}

func TestObserver_UnknownEncodingDisablesParsing(t *testing.T) {
	h := header("Content-Type", "application/json", "Content-Encoding", "zstd")
	samples := feed(t, FamilyOpenAI, h, []byte(`{"usage":{"prompt_tokens":1}}`), 64)
	assert.Empty(t, samples)
}

func TestObserver_CancelledContextEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var samples []Sample
	obs := New(ctx, FamilyOpenAI, func(_ bool, s Sample) {
		samples = append(samples, s)
	})

	obs.Observe(header("Content-Type", "application/json"), []byte(`{"model":"gpt-4","usage":{"prompt`))
	cancel()

	done := make(chan struct{})
	go func() {
		obs.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer did not close after cancellation")
	}
	assert.Empty(t, samples)
}

func TestIsStreamingContentType(t *testing.T) {
	assert.True(t, isStreamingContentType("text/event-stream; charset=utf-8"))
	assert.True(t, isStreamingContentType("application/x-ndjson"))
	assert.True(t, isStreamingContentType("application/stream+json"))
	assert.False(t, isStreamingContentType("application/json"))
	assert.False(t, isStreamingContentType(""))
}
