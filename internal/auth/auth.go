package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".lettuce-diagnosis"
	credentialFile = "credentials"
)

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable
//  2. Key file at ~/.lettuce-diagnosis/credentials
//
// Callers resolve the key per model invocation rather than caching it, so a
// rotated key takes effect without a restart.
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromFile()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from credentials file")
		return key, nil
	}

	return "", fmt.Errorf("API key not found. Set GEMINI_API_KEY or create ~/%s/%s", credentialDir, credentialFile)
}

// HasAPIKey reports whether a credential can currently be resolved.
func HasAPIKey() bool {
	_, err := GetAPIKey()
	return err == nil
}

// getFromFile reads the API key from the credentials file.
func getFromFile() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(credPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("credentials file not found at %s", credPath)
	}
	if err != nil {
		return "", err
	}

	// The key file must be owner-only; a group- or world-readable credential
	// is ignored rather than used.
	if mode := fi.Mode().Perm(); mode&0077 != 0 {
		log.Warn().
			Str("file", credPath).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Credentials file has insecure permissions (should be 0600); skipping")
		return "", fmt.Errorf("credentials file %s has insecure permissions", credPath)
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, credentialFile), nil
}
