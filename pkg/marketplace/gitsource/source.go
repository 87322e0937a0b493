// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/recipebook"
	"genforge.dev/x/forge/pkg/utils"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/jdx/go-netrc"
	"github.com/opencontainers/go-digest"
)

// GitSource serves a marketplace from a git repository, cloned into the
// forge cache and laid out like a local marketplace. The checkout is only
// refreshed when auto-fetch is enabled.
type GitSource struct {
	name   string
	url    string
	config *forgeconfig.Config

	// head of the checkout actually used, set on first load
	commit string
}

var _ marketplace.Source = (*GitSource)(nil)

func New(name, url string, config *forgeconfig.Config) *GitSource {
	return &GitSource{name: name, url: url, config: config}
}

func (s *GitSource) LoadRecipeBook(ctx context.Context) (*recipebook.RecipeBook, error) {
	root, err := s.ensureCheckout(ctx)
	if err != nil {
		return nil, err
	}
	book, err := recipebook.Read(filepath.Join(root, marketplace.RecipeBookFilename))
	if err != nil {
		return nil, err
	}
	book.Marketplace = s.name
	return book, nil
}

func (s *GitSource) LoadModuleManifest(ctx context.Context, moduleID string) (*genmodule.Manifest, error) {
	root, err := s.ensureCheckout(ctx)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(root, marketplace.ModulesDirName, filepath.FromSlash(moduleID), marketplace.ModuleManifestName)
	return genmodule.ReadManifest(p)
}

func (s *GitSource) Describe() marketplace.SourceInfo {
	return marketplace.SourceInfo{
		Type:   marketplace.SourceTypeGit,
		Source: s.url,
		Ref:    s.commit,
	}
}

// checkoutPath keys the cache dir by a fingerprint of the source URL so two
// genomes sharing a marketplace share one checkout.
func (s *GitSource) checkoutPath() string {
	fingerprint := digest.FromString(s.url).Encoded()[:16]
	return filepath.Join(s.config.MarketplaceCachePath, fingerprint)
}

func (s *GitSource) ensureCheckout(ctx context.Context) (string, error) {
	path := s.checkoutPath()

	exists, err := utils.DirExists(path)
	if err != nil {
		return "", err
	}

	var repo *git.Repository
	if !exists {
		slog.Info("cloning marketplace", "marketplace", s.name, "url", s.url)
		repo, err = git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
			URL:   s.url,
			Auth:  s.auth(),
			Depth: 1,
		})
		if err != nil {
			return "", fmt.Errorf("failed to clone marketplace %q from %q: %w", s.name, s.url, err)
		}
	} else {
		repo, err = git.PlainOpen(path)
		if err != nil {
			return "", err
		}
		if s.config.AutoFetch {
			if err := s.refresh(ctx, repo); err != nil {
				return "", err
			}
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	s.commit = head.Hash().String()

	return path, nil
}

func (s *GitSource) refresh(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{Auth: s.auth()})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// auth reads the netrc machine entry for the source host, if any. SSH urls
// fall back to the ambient ssh agent handled by go-git itself.
func (s *GitSource) auth() transport.AuthMethod {
	host := urlHost(s.url)
	if host == "" || s.config.NetrcPath == "" {
		return nil
	}

	n, err := netrc.Parse(s.config.NetrcPath)
	if err != nil {
		return nil
	}
	machine := n.Machine(host)
	if machine == nil {
		return nil
	}

	return &http.BasicAuth{
		Username: machine.Get("login"),
		Password: machine.Get("password"),
	}
}

func urlHost(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.IndexAny(trimmed, "/:"); i > 0 {
		return trimmed[:i]
	}
	return ""
}
