// Package fs reads prompt templates, judge settings and datasets from disk,
// and caches judge replies in a directory.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/ragjudge"
)

// DefaultCacheDir returns the default cache directory for ragjudge.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/ragjudge,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ragjudge")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "ragjudge")
	}
	return filepath.Join(home, ".cache", "ragjudge")
}

// promptFile is the on-disk form of a prompt template.
type promptFile struct {
	EvalPrompt *string `json:"eval_prompt"`
}

// LoadTemplate reads a prompt template file of the form {"eval_prompt": "..."}
// and parses the template.
func LoadTemplate(path string) (*ragjudge.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f promptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if f.EvalPrompt == nil {
		return nil, &ragjudge.ConfigError{Field: "eval_prompt", Reason: "missing from " + path}
	}
	return ragjudge.ParseTemplate(*f.EvalPrompt)
}

// LoadJudgeConfig reads judge settings from path. Settings absent from the
// file keep their defaults. The result is not validated so that callers can
// apply overrides first.
func LoadJudgeConfig(path string) (ragjudge.JudgeConfig, error) {
	cfg := ragjudge.DefaultJudgeConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDataset reads a grouped dataset file. See ragjudge.DecodeDataset.
func LoadDataset(path string) (ragjudge.Dataset, []ragjudge.SkippedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	ds, skipped, err := ragjudge.DecodeDataset(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, skipped, nil
}
