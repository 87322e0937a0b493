package planlock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/placement"
	"genforge.dev/x/forge/pkg/schema"
	"github.com/goccy/go-yaml"
	"github.com/opencontainers/go-digest"
)

const (
	PlanLockKind       = "PlanLock"
	PlanLockVersion    = "v1"
	PlanLockAPIVersion = schema.APIGroup + "/" + PlanLockVersion
)

var ErrInvalidPlanLock = fmt.Errorf("invalid plan lock")

type PlanLock struct {
	schema.ManifestMeta `yaml:",inline"`

	GenomeHash string `yaml:"genomeHash"`
	ResolvedAt string `yaml:"resolvedAt"`

	Modules []*LockedModule `yaml:"modules"`
	// ExecutionPlan is always a valid topological order of Modules.
	ExecutionPlan []string `yaml:"executionPlan"`

	Marketplaces map[string]marketplace.SourceInfo `yaml:"marketplaces,omitempty"`
}

type LockedModule struct {
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
	Integrity   string `yaml:"integrity"`
	Marketplace string `yaml:"marketplace"`

	Placement *placement.Placement `yaml:"placement,omitempty"`
}

func ReadPlanLock(filePath string) (*PlanLock, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadPlanLockContents(bytes)
}

func ReadPlanLockContents(contents []byte) (*PlanLock, error) {
	var l PlanLock
	if err := yaml.Unmarshal(contents, &l); err != nil {
		return nil, err
	}

	s := schema.ManifestMeta{
		APIVersion: PlanLockAPIVersion,
		Kind:       PlanLockKind,
	}
	if err := s.ValidateSchema(l.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlanLock, err.Error())
	}

	return &l, nil
}

// GenomeHash content-addresses the semantic content of a genome. JSON is the
// canonical form because encoding/json emits map keys in sorted order, so
// incidental key ordering in the genome file never changes the hash, while
// any added, removed or reconfigured package, app or marketplace does.
func GenomeHash(g *genome.Genome) (string, error) {
	normalized := map[string]any{
		"workspace":    g.Workspace,
		"marketplaces": g.Marketplaces,
		"packages":     g.Packages,
		"apps":         g.Apps,
		"overrides":    g.Overrides,
	}
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(canonical).String(), nil
}
