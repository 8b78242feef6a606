package lib

import "fmt"

const (
	EnvKeyPrefix = "RELEASECTL"
)

var (
	LogLevelEnv   = fmt.Sprintf("%s_%s", EnvKeyPrefix, "LOG_LEVEL")
	ConfigPathEnv = fmt.Sprintf("%s_%s", EnvKeyPrefix, "CONFIG")
)

// Azure Container Registry credentials. The names follow the secrets the
// release workflows expose on CI runners.
var (
	AcrLoginServerEnv = "ACR_LOGIN_SERVER"
	AcrUsernameEnv    = "ACR_USERNAME"
	AcrPasswordEnv    = "ACR_PASSWORD"
)

// GCP Artifact Registry credentials.
var (
	GcpProjectIDEnv         = "GCP_PROJECT_ID"
	GcpServiceAccountKeyEnv = "GCP_SERVICE_ACCOUNT_KEY"
)

var (
	GHCRAccessKeyEnv = fmt.Sprintf("%s_%s", EnvKeyPrefix, "GHCR_ACCESS_KEY")
	GithubTokenEnv   = "GITHUB_TOKEN"
)
