// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file is one secret: the filename is the key name and the trimmed file
// contents are the value. Environment variables fill in keys that have no
// file.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// Key file names.
const (
	AnthropicKey = "anthropic-api-key"
	OpenAIKey    = "openai-api-key"
)

// envFallback maps key file names to the environment variable consulted
// when the file is absent.
var envFallback = map[string]string{
	AnthropicKey: "ANTHROPIC_API_KEY",
	OpenAIKey:    "OPENAI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// reported to warn and skipped.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	if warn == nil {
		warn = io.Discard
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// KeyForProvider returns the key file name for an AI provider.
func KeyForProvider(p types.AIProvider) string {
	if p == types.ProviderOpenAI {
		return OpenAIKey
	}
	return AnthropicKey
}

// Lookup returns the named secret, falling back to its environment
// variable via getenv. getenv may be nil to use os.Getenv.
func Lookup(secrets map[string]string, name string, getenv func(string) string) string {
	if v := secrets[name]; v != "" {
		return v
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if env, ok := envFallback[name]; ok {
		return strings.TrimSpace(getenv(env))
	}
	return ""
}
