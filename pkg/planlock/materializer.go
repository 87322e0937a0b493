package planlock

import (
	"context"
	"os"
	"time"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/placement"
	"genforge.dev/x/forge/pkg/schema"
	"genforge.dev/x/forge/pkg/utils"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

// Materialize combines the resolved modules, their execution order and their
// placements into the persisted lock artifact.
func Materialize(
	modules []*genmodule.Module,
	executionPlan []string,
	placements map[string]*placement.Placement,
	g *genome.Genome,
	sources map[string]marketplace.SourceInfo,
) (*PlanLock, error) {
	hash, err := GenomeHash(g)
	if err != nil {
		return nil, err
	}

	locked := lo.Map(modules, func(m *genmodule.Module, _ int) *LockedModule {
		return &LockedModule{
			ID:          m.ID.Raw,
			Version:     m.Version,
			Integrity:   m.Integrity,
			Marketplace: m.Marketplace,
			Placement:   placements[m.ID.Raw],
		}
	})

	return &PlanLock{
		ManifestMeta: schema.ManifestMeta{
			APIVersion: PlanLockAPIVersion,
			Kind:       PlanLockKind,
		},
		GenomeHash:    hash,
		ResolvedAt:    time.Now().UTC().Format(time.RFC3339),
		Modules:       locked,
		ExecutionPlan: executionPlan,
		Marketplaces:  sources,
	}, nil
}

// ShouldReuse reports whether an existing lock file still matches the
// genome. On reuse the prior artifact is returned unchanged by the caller,
// so resolvedAt is preserved, not refreshed.
func ShouldReuse(existing *PlanLock, g *genome.Genome) (bool, error) {
	if existing == nil {
		return false, nil
	}
	hash, err := GenomeHash(g)
	if err != nil {
		return false, err
	}
	return existing.GenomeHash == hash, nil
}

// Write persists the lock file atomically under a file lock. A failed
// resolution never reaches this point, so partial lock files are never
// written.
func Write(ctx context.Context, lock *PlanLock, filePath string) error {
	data, err := yaml.Marshal(lock)
	if err != nil {
		return err
	}
	return utils.WithFileLock(ctx, filePath+".lock", func() error {
		return os.WriteFile(filePath, data, 0644)
	})
}
