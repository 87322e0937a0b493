// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package plansummary

import (
	"fmt"
	"strings"

	"genforge.dev/x/forge/pkg/planlock"
	"genforge.dev/x/forge/pkg/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
)

// Print writes the header line and module table to the given printer.
func Print(p utils.RawPrinter, workspace string, lock *planlock.PlanLock) {
	p.Printf("workspace %s, resolved at %s\n", workspace, lock.ResolvedAt)
	p.Println(Table(lock))
}

// Table renders the locked modules in execution order, one row per module:
// execution index, module id, version, and resolved placement.
func Table(lock *planlock.PlanLock) string {
	byID := lo.KeyBy(lock.Modules, func(m *planlock.LockedModule) string {
		return m.ID
	})

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Rows(lo.FilterMap(lock.ExecutionPlan, func(id string, i int) ([]string, bool) {
			m, ok := byID[id]
			if !ok {
				return nil, false
			}

			return []string{
				lipgloss.NewStyle().Faint(true).Render(ordinal(i)),
				lipgloss.NewStyle().Bold(true).Render(m.ID),
				m.Version,
				placementCell(m),
			}, true
		})...).
		String()
}

func ordinal(i int) string {
	return fmt.Sprintf("%2d.", i+1)
}

func placementCell(m *planlock.LockedModule) string {
	p := m.Placement
	switch {
	case p == nil:
		return lipgloss.NewStyle().Faint(true).Italic(true).Render("-")
	case len(p.TargetApps) > 0:
		return "apps: " + strings.Join(p.TargetApps, ", ")
	case p.TargetPackage != nil:
		return *p.TargetPackage
	default:
		return lipgloss.NewStyle().Faint(true).Italic(true).Render("-")
	}
}
