package routing

import (
	"net/http"

	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

// Metadata keys populated by templated strategies.
const (
	MetadataRuntime        = "Runtime"
	MetadataRegion         = "Region"
	MetadataResourceName   = "ResourceName"
	MetadataDeploymentName = "DeploymentName"
)

// bedrockStrategy routes /aws-bedrock/{runtime}/{region}/{rest...} to
// https://{runtime}.{region}.amazonaws.com/{rest...}.
type bedrockStrategy struct{}

// NewBedrock builds the AWS Bedrock strategy.
func NewBedrock() Strategy { return &bedrockStrategy{} }

func (s *bedrockStrategy) Name() string { return "aws-bedrock" }

func (s *bedrockStrategy) Route(_ *http.Request, path urlpath.ParsedPath) RouteDecision {
	rest := path.Rest()
	if ok, _ := urlpath.MinSegments(rest, 2); !ok {
		return Failure("aws-bedrock requires at least runtime and region segments: /aws-bedrock/{runtime}/{region}/...")
	}

	runtime, region := rest[0], rest[1]
	if ok, msg := urlpath.NotEmpty(runtime, "runtime"); !ok {
		return Failure(msg)
	}
	if ok, msg := urlpath.NotEmpty(region, "region"); !ok {
		return Failure(msg)
	}

	host := runtime + "." + region + ".amazonaws.com"
	return Success(s.Name(), host, rest[2:], path.Query,
		WithMetadata(MetadataRuntime, runtime),
		WithMetadata(MetadataRegion, region))
}

// azureOpenAIStrategy routes /azure-openai/{resource}/{deployment}/{rest...}
// to https://{resource}.openai.azure.com/openai/deployments/{deployment}/{rest...}.
type azureOpenAIStrategy struct{}

// NewAzureOpenAI builds the Azure OpenAI strategy.
func NewAzureOpenAI() Strategy { return &azureOpenAIStrategy{} }

func (s *azureOpenAIStrategy) Name() string { return "azure-openai" }

func (s *azureOpenAIStrategy) Route(_ *http.Request, path urlpath.ParsedPath) RouteDecision {
	rest := path.Rest()
	if ok, _ := urlpath.MinSegments(rest, 2); !ok {
		return Failure("azure-openai requires at least resource and deployment segments: /azure-openai/{resource}/{deployment}/...")
	}

	resource, deployment := rest[0], rest[1]
	if ok, msg := urlpath.NotEmpty(resource, "resource"); !ok {
		return Failure(msg)
	}
	if ok, msg := urlpath.NotEmpty(deployment, "deployment"); !ok {
		return Failure(msg)
	}

	segments := append([]string{"openai", "deployments", deployment}, rest[2:]...)
	return Success(s.Name(), resource+".openai.azure.com", segments, path.Query,
		WithMetadata(MetadataResourceName, resource),
		WithMetadata(MetadataDeploymentName, deployment))
}

// vertexAIStrategy routes
// /google-vertex-ai/projects/{projectId}/locations/{location}/{rest...} to
// https://{location}-aiplatform.googleapis.com/v1/projects/{projectId}/locations/{location}/{rest...}.
type vertexAIStrategy struct{}

// NewVertexAI builds the Google Vertex AI strategy.
func NewVertexAI() Strategy { return &vertexAIStrategy{} }

func (s *vertexAIStrategy) Name() string { return "google-vertex-ai" }

func (s *vertexAIStrategy) Route(_ *http.Request, path urlpath.ParsedPath) RouteDecision {
	rest := path.Rest()
	if ok, _ := urlpath.MinSegments(rest, 4); !ok {
		return Failure("google-vertex-ai requires project and location segments: /google-vertex-ai/projects/{projectId}/locations/{location}/...")
	}

	projectID, location := rest[1], rest[3]
	if ok, msg := urlpath.NotEmpty(projectID, "projectId"); !ok {
		return Failure(msg)
	}
	if ok, msg := urlpath.NotEmpty(location, "location"); !ok {
		return Failure(msg)
	}

	segments := append([]string{"v1", "projects", projectID, "locations", location}, rest[4:]...)
	return Success(s.Name(), location+"-aiplatform.googleapis.com", segments, path.Query,
		WithMetadata("ProjectID", projectID),
		WithMetadata("Location", location))
}
