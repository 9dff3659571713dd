// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"askdata/cli/internal/dataset"
	"askdata/cli/internal/dsn"
	apperrors "askdata/cli/internal/errors"
	"askdata/cli/internal/keychain"
	"askdata/cli/internal/llm"
	"askdata/cli/internal/logging"
	"askdata/cli/internal/pipeline"
	"askdata/cli/internal/prompt"
	"askdata/cli/internal/xdg"

	"go.uber.org/zap"
)

// profileNone selects the descriptor derived from inferred column roles.
const profileNone = "none"

// datasets keeps every dataset loaded by this process.
var datasets = dataset.NewCache()

// sourceFlags are the dataset selection flags shared by ask, chat and schema.
type sourceFlags struct {
	data    string
	table   string
	query   string
	profile string
}

// source returns the data source from --data, falling back to ASKDATA_DATA.
// Database URLs are validated before any connection is attempted.
func (f sourceFlags) source() (string, error) {
	s := strings.TrimSpace(f.data)
	if s == "" {
		s = strings.TrimSpace(os.Getenv("ASKDATA_DATA"))
	}
	if s == "" {
		return "", apperrors.New(apperrors.KindUsage, "no data source: pass --data <file.csv|database URL> or set ASKDATA_DATA")
	}
	if dsn.DetectSourceType(s).IsDatabase() {
		if err := dsn.Validate(s); err != nil {
			return "", apperrors.Wrap(apperrors.KindUsage, "invalid data source", err)
		}
	}
	return s, nil
}

// loadDataset opens the selected source through the process cache.
func loadDataset(ctx context.Context, source string, q dataset.Query) (*dataset.Dataset, error) {
	return datasets.Get(ctx, q.Key(source), func(ctx context.Context) (*dataset.Dataset, error) {
		return dataset.Open(ctx, source, q)
	})
}

// workspace is everything a question needs besides the question itself.
type workspace struct {
	ds         *dataset.Dataset
	descriptor prompt.Descriptor
	profile    string
	pipe       *pipeline.Pipeline
}

// openWorkspace loads the dataset, picks the descriptor and builds the
// pipeline for the configured completion provider.
func openWorkspace(ctx context.Context, flags sourceFlags, opts ...pipeline.Option) (*workspace, error) {
	source, err := flags.source()
	if err != nil {
		return nil, err
	}
	ds, err := loadDataset(ctx, source, dataset.Query{Table: flags.table, SQL: flags.query})
	if err != nil {
		return nil, err
	}

	descriptor, profile, err := chooseDescriptor(ds, flags.profile)
	if err != nil {
		return nil, err
	}

	key, err := apiKey(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	completer, err := llm.New(ctx, cfg.LLM, key)
	if err != nil {
		return nil, err
	}

	opts = append([]pipeline.Option{
		pipeline.WithGenerationTimeout(cfg.Timeouts.GenerationTimeout()),
		pipeline.WithExecutionTimeout(cfg.Timeouts.ExecutionTimeout()),
		pipeline.WithExplanationTimeout(cfg.Timeouts.ExplanationTimeout()),
	}, opts...)

	logging.L().Debug("workspace ready",
		zap.String("dataset", ds.Name()),
		zap.Int("rows", ds.Len()),
		zap.String("profile", profile))

	return &workspace{
		ds:         ds,
		descriptor: descriptor,
		profile:    profile,
		pipe:       pipeline.New(completer, completer, opts...),
	}, nil
}

// apiKey returns the key from the environment or config, then the keychain.
func apiKey(provider string) (string, error) {
	if k := strings.TrimSpace(cfg.APIKey); k != "" {
		return k, nil
	}
	km, err := keychain.GetManager()
	if err == nil {
		k, err := km.LoadAPIKey(provider)
		if err == nil && k != "" {
			return k, nil
		}
		logging.L().Debug("no API key in keychain", zap.String("provider", provider), zap.Error(err))
	} else {
		logging.L().Debug("keychain unavailable", zap.Error(err))
	}
	return "", apperrors.New(apperrors.KindConfig,
		fmt.Sprintf("no API key for %s: run 'askdata key set' or export ASKDATA_API_KEY", provider))
}

func loadProfiles() (map[string]*prompt.Profile, error) {
	dir := ""
	if base, err := xdg.ConfigDir(); err == nil {
		dir = filepath.Join(base, "profiles")
	}
	profiles, err := prompt.LoadProfiles(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfig, "could not load dataset profiles", err)
	}
	return profiles, nil
}

// chooseDescriptor resolves the prompt descriptor for ds. An explicit profile
// is always used. Otherwise the configured default applies only when the
// dataset looks like the data it was written for.
func chooseDescriptor(ds *dataset.Dataset, explicit string) (prompt.Descriptor, string, error) {
	if explicit == profileNone {
		return prompt.GenericDescriptor(ds), profileNone, nil
	}
	profiles, err := loadProfiles()
	if err != nil {
		return prompt.Descriptor{}, "", err
	}
	return pickDescriptor(profiles, ds, explicit, cfg.Profile)
}

func pickDescriptor(profiles map[string]*prompt.Profile, ds *dataset.Dataset, explicit, fallback string) (prompt.Descriptor, string, error) {
	if explicit != "" {
		p, ok := profiles[explicit]
		if !ok {
			return prompt.Descriptor{}, "", apperrors.New(apperrors.KindUsage,
				fmt.Sprintf("unknown profile %q (available: %s, %s)", explicit, strings.Join(prompt.ProfileNames(profiles), ", "), profileNone))
		}
		return p.Descriptor(ds), p.Name, nil
	}
	if p, ok := profiles[fallback]; ok && matches(p, ds) {
		return p.Descriptor(ds), p.Name, nil
	}
	return prompt.GenericDescriptor(ds), profileNone, nil
}

// matches reports whether ds carries the required columns of p, or at least
// half of its known columns when none are required.
func matches(p *prompt.Profile, ds *dataset.Dataset) bool {
	has := func(c string) bool { _, ok := ds.Column(c); return ok }
	if len(p.Required) > 0 {
		for _, c := range p.Required {
			if !has(c) {
				return false
			}
		}
		return true
	}
	if len(p.Columns) == 0 {
		return false
	}
	n := 0
	for _, c := range p.Columns {
		if has(c) {
			n++
		}
	}
	return n*2 >= len(p.Columns)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindUsage:
		return 2
	case apperrors.KindConfig:
		return 3
	case apperrors.KindDataset:
		return 4
	}
	return 1
}
