// Package awssig signs aws-bedrock requests with SigV4 when the gateway
// is configured with AWS credentials. Off by default; with no signer the
// client's own credentials pass through untouched like every other
// provider.
package awssig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

const service = "bedrock"

// Signer holds resolved AWS credentials and the SigV4 implementation.
type Signer struct {
	creds   aws.CredentialsProvider
	signer  *v4.Signer
	region  string
	enabled bool
}

// New resolves credentials from the default AWS chain (env, shared
// config, IMDS). defaultRegion is used when a request's route metadata
// carries none.
func New(ctx context.Context, defaultRegion string) (*Signer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	region := defaultRegion
	if region == "" {
		region = cfg.Region
	}
	return &Signer{
		creds:   cfg.Credentials,
		signer:  v4.NewSigner(),
		region:  region,
		enabled: true,
	}, nil
}

// Enabled reports whether signing is configured. A nil Signer is valid
// and disabled.
func (s *Signer) Enabled() bool {
	return s != nil && s.enabled
}

// Sign attaches SigV4 headers for the buffered payload. region comes
// from the route metadata and falls back to the configured default.
func (s *Signer) Sign(ctx context.Context, req *http.Request, body []byte, region string) error {
	if region == "" {
		region = s.region
	}
	if region == "" {
		return fmt.Errorf("no region for bedrock signing")
	}

	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve aws credentials: %w", err)
	}

	sum := sha256.Sum256(body)
	req.Header.Del("Authorization")
	req.Header.Del("x-api-key")
	return s.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), service, region, time.Now())
}
