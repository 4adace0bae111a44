package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// roleSessionName identifies assumed-role sessions in CloudTrail.
const roleSessionName = "datadog-mcp-secrets"

// VaultSource fetches secrets from AWS Secrets Manager using the shared
// credential chain (profile, SSO, env vars) with an optional assumed role.
type VaultSource struct {
	profile string
	region  string
	roleARN string

	mu     sync.Mutex
	client *secretsmanager.Client
}

// NewVaultSource creates a Secrets Manager source. The client is built
// lazily on first use so construction never touches the network.
func NewVaultSource(profile, region, roleARN string) *VaultSource {
	return &VaultSource{profile: profile, region: region, roleARN: roleARN}
}

// Name returns "aws-secrets-manager".
func (s *VaultSource) Name() string { return "aws-secrets-manager" }

// Resolve fetches the secret at the given path. A missing secret is
// absent; any other failure (auth, network, throttling) is an
// *UnavailableError carrying an operator-facing fix.
func (s *VaultSource) Resolve(ctx context.Context, secretPath string) (string, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return "", &UnavailableError{
			Backend: "AWS Secrets Manager",
			Key:     secretPath,
			Reason:  "loading AWS config: " + err.Error(),
			Fix:     "Check AWS_PROFILE/AWS_REGION and your ~/.aws configuration.",
			Err:     err,
		}
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretPath),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", &NotFoundError{Source: s.Name(), Key: secretPath}
		}
		return "", s.unavailable(secretPath, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	// Binary secrets are already decoded by the SDK.
	return string(out.SecretBinary), nil
}

// clientFor returns the Secrets Manager client, building it on first call.
// When a role ARN is configured, credentials come from an auto-refreshing
// STS AssumeRole provider instead of the base chain.
func (s *VaultSource) clientFor(ctx context.Context) (*secretsmanager.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.region),
	}
	if s.profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(s.profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if s.roleARN != "" {
		stsClient := sts.NewFromConfig(awsCfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, s.roleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		})
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}

	s.client = secretsmanager.NewFromConfig(awsCfg)
	return s.client, nil
}

// unavailable classifies an SDK error into an UnavailableError with
// actionable fix text.
func (s *VaultSource) unavailable(secretPath string, err error) error {
	msg := err.Error()
	fix := ""

	switch {
	case strings.Contains(msg, "AccessDenied"):
		fix = "Check IAM permissions for secretsmanager:GetSecretValue on " + secretPath
	case strings.Contains(msg, "ExpiredToken"):
		fix = "AWS credentials expired. Run: aws sso login"
	case strings.Contains(msg, "failed to retrieve credentials") ||
		strings.Contains(msg, "no EC2 IMDS role found"):
		fix = "No AWS credentials found. Run: aws configure\nOr set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY\nOr run: aws sso login"
	case strings.Contains(msg, "dial tcp") || strings.Contains(msg, "no such host"):
		fix = "Could not reach AWS. Check your region setting and network connectivity."
	}

	return &UnavailableError{
		Backend: "AWS Secrets Manager",
		Key:     secretPath,
		Reason:  msg,
		Fix:     fix,
		Err:     err,
	}
}

// genericValueKeys are tried when extracting a value from a JSON secret
// with no preferred key match.
var genericValueKeys = []string{"value", "secret", "key"}

// ExtractValue pulls the credential out of a raw secret payload. Secrets
// are stored either as plain text or as a small JSON object; preferred
// keys (e.g. DD_API_KEY, api_key) are checked first, then common generic
// keys, then a sole remaining value.
func ExtractValue(raw string, preferred ...string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return raw
	}

	var data map[string]string
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return raw
	}

	for _, k := range preferred {
		if v := data[k]; v != "" {
			return v
		}
	}
	for _, k := range genericValueKeys {
		if v := data[k]; v != "" {
			return v
		}
	}
	if len(data) == 1 {
		for _, v := range data {
			return v
		}
	}
	return raw
}
