package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

func route(t *testing.T, s Strategy, path, query string) RouteDecision {
	t.Helper()
	target := path
	if query != "" {
		target += "?" + query
	}
	r := httptest.NewRequest(http.MethodPost, target, nil)
	return s.Route(r, urlpath.Parse(r.URL.Path, r.URL.RawQuery))
}

func TestTransparent_PreservesRest(t *testing.T) {
	s := NewTransparent("openai", "api.openai.com")
	d := route(t, s, "/openai/v1/chat/completions", "")

	require.True(t, d.OK())
	assert.Equal(t, "api.openai.com", d.Host)
	assert.Equal(t, []string{"v1", "chat", "completions"}, d.TargetSegments)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", d.TargetURI())
	assert.NotNil(t, d.ExtraHeaders)
	assert.NotNil(t, d.Metadata)
}

func TestTransparent_EmptyRest(t *testing.T) {
	s := NewTransparent("groq", "api.groq.com")
	d := route(t, s, "/groq", "")

	require.True(t, d.OK())
	assert.Equal(t, "https://api.groq.com/", d.TargetURI())
}

func TestPrefixed_OpenRouter(t *testing.T) {
	s := NewPrefixed("openrouter", "openrouter.ai", "api")
	d := route(t, s, "/openrouter/v1/chat/completions", "")

	require.True(t, d.OK())
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", d.TargetURI())
}

func TestPrefixed_Fireworks(t *testing.T) {
	s := NewPrefixed("fireworks", "api.fireworks.ai", "inference")
	d := route(t, s, "/fireworks/v1/completions", "")

	require.True(t, d.OK())
	assert.Equal(t, "https://api.fireworks.ai/inference/v1/completions", d.TargetURI())
}

func TestBedrock_Rewrite(t *testing.T) {
	d := route(t, NewBedrock(), "/aws-bedrock/bedrock-runtime/us-east-1/foo/bar", "")

	require.True(t, d.OK())
	assert.Equal(t, "bedrock-runtime.us-east-1.amazonaws.com", d.Host)
	assert.Equal(t, []string{"foo", "bar"}, d.TargetSegments)
	assert.Equal(t, "bedrock-runtime", d.Metadata[MetadataRuntime])
	assert.Equal(t, "us-east-1", d.Metadata[MetadataRegion])
}

func TestBedrock_InvokeURI(t *testing.T) {
	d := route(t, NewBedrock(), "/aws-bedrock/bedrock-runtime/us-east-1/model/claude-3-sonnet/invoke", "")

	require.True(t, d.OK())
	assert.Equal(t,
		"https://bedrock-runtime.us-east-1.amazonaws.com/model/claude-3-sonnet/invoke",
		d.TargetURI())
}

func TestBedrock_MissingSegments(t *testing.T) {
	d := route(t, NewBedrock(), "/aws-bedrock/bedrock-runtime", "")

	require.False(t, d.OK())
	assert.Contains(t, d.Err, "requires at least runtime and region")
}

func TestAzureOpenAI_Rewrite(t *testing.T) {
	d := route(t, NewAzureOpenAI(), "/azure-openai/myres/mydep/chat/completions", "api-version=2024-02-01")

	require.True(t, d.OK())
	assert.Equal(t, "myres.openai.azure.com", d.Host)
	assert.Equal(t,
		"https://myres.openai.azure.com/openai/deployments/mydep/chat/completions?api-version=2024-02-01",
		d.TargetURI())
	assert.Equal(t, "myres", d.Metadata[MetadataResourceName])
	assert.Equal(t, "mydep", d.Metadata[MetadataDeploymentName])
}

func TestAzureOpenAI_MissingSegments(t *testing.T) {
	d := route(t, NewAzureOpenAI(), "/azure-openai/myres", "")
	require.False(t, d.OK())
	assert.Contains(t, d.Err, "requires at least resource and deployment")
}

func TestVertexAI_Rewrite(t *testing.T) {
	d := route(t, NewVertexAI(), "/google-vertex-ai/projects/p1/locations/us-central1/publishers/google/models/gemini:generateContent", "")

	require.True(t, d.OK())
	assert.Equal(t, "us-central1-aiplatform.googleapis.com", d.Host)
	assert.Equal(t,
		[]string{"v1", "projects", "p1", "locations", "us-central1", "publishers", "google", "models", "gemini:generateContent"},
		d.TargetSegments)
}

func TestVertexAI_MissingSegments(t *testing.T) {
	d := route(t, NewVertexAI(), "/google-vertex-ai/projects/p1", "")
	require.False(t, d.OK())
	assert.Contains(t, d.Err, "requires project and location")
}

func TestSuccess_MetadataMerge(t *testing.T) {
	d := Success("x", "host", nil, "",
		WithMetadata(MetadataProvider, "overridden"),
		WithHeader("X-Extra", "1"))

	// Caller-supplied metadata wins on key collision.
	assert.Equal(t, "overridden", d.Metadata[MetadataProvider])
	assert.Equal(t, "1", d.ExtraHeaders.Get("X-Extra"))
	assert.Equal(t, []string{}, d.TargetSegments)
}

func TestWithScheme(t *testing.T) {
	d := Success("local", "localhost:11434", []string{"api", "chat"}, "", WithScheme("http"))
	assert.Equal(t, "http://localhost:11434/api/chat", d.TargetURI())
}
