package lib

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// GetSecretFromEnvOrInput resolves a secret by trying, in order: the given
// environment variables, the credentials storage under storageKey, and
// finally an interactive prompt. A secret obtained from the prompt is saved
// back to the storage so subsequent runs don't ask again.
func GetSecretFromEnvOrInput(storage CredentialsStorage, storageKey, storageLabel string, envs []string, in io.Reader, out io.Writer, prompt string) (string, error) {
	for _, env := range envs {
		if env == "" {
			continue
		}
		if value := os.Getenv(env); value != "" {
			slog.Debug("secret resolved from environment", "env", env)
			return value, nil
		}
	}

	stored, err := storage.Get(storageKey)
	if err != nil {
		return "", fmt.Errorf("reading %q from credentials storage: %w", storageKey, err)
	}
	if stored != "" {
		slog.Debug("secret resolved from credentials storage", "key", storageKey)
		return stored, nil
	}

	secret, err := RequestSecretInput(in, out, prompt)
	if err != nil {
		return "", fmt.Errorf("requesting secret input: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("%w - empty secret provided for %q", BadUserInputError, storageLabel)
	}

	if err := storage.Set(storageKey, secret, KeyExtras{Label: storageLabel}); err != nil {
		return "", fmt.Errorf("saving %q to credentials storage: %w", storageKey, err)
	}

	return secret, nil
}
