//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/sqledit"

// =============================================================================
// COHESION TEST - Core types must be shared by multiple packages
// =============================================================================

// TestGovernance_CoreCohesion verifies that types in pkg/core are genuinely
// shared across multiple packages. Single-use types should be moved to their
// sole consumer to maintain cohesion.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	// Find pkg/core and collect exported type names
	coreDefs := make(map[types.Object]string)
	var corePkg *packages.Package

	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" {
			corePkg = p
			scope := p.Types.Scope()
			for _, name := range scope.Names() {
				obj := scope.Lookup(name)
				if _, isType := obj.(*types.TypeName); isType && obj.Exported() {
					coreDefs[obj] = name
				}
			}
			break
		}
	}

	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	// Count usages: CoreTypeName -> set of importing packages
	usageMap := make(map[string]map[string]bool)
	for _, name := range coreDefs {
		usageMap[name] = make(map[string]bool)
	}

	base := modulePath + "/"

	for _, p := range pkgs {
		if p.PkgPath == corePkg.PkgPath || strings.HasSuffix(p.PkgPath, "_test") {
			continue
		}
		if p.TypesInfo == nil {
			continue
		}

		for _, info := range p.TypesInfo.Uses {
			if name, exists := coreDefs[info]; exists {
				importer := strings.TrimPrefix(p.PkgPath, base)
				usageMap[name][importer] = true
			}
		}
	}

	for typeName, importers := range usageMap {
		if isCohesionAllowlisted(typeName) {
			continue
		}

		if len(importers) == 0 {
			t.Logf("NOTE: core.%s is only used through values, methods or errors.Is", typeName)
		} else if len(importers) == 1 {
			var user string
			for k := range importers {
				user = k
			}
			t.Errorf("COHESION VIOLATION: 'core.%s' is used ONLY by '%s'.\n"+
				"   Fix: Move type from pkg/core to %s.",
				typeName, user, user)
		}
	}
}

// isCohesionAllowlisted returns true for types allowed to have single usage.
func isCohesionAllowlisted(name string) bool {
	allowlist := map[string]bool{
		"TypePolicy": true, // Chosen by config, consumed by the accessor
		"ErrorKind":  true, // Part of the error taxonomy
	}
	return allowlist[name]
}

// =============================================================================
// LAYERING TEST - Dependencies point from the CLI down to the core
// =============================================================================

// TestGovernance_Layering checks the import graph:
//   - pkg/... never imports internal/...
//   - the gate and the accessor never import the CLI
//   - the accessor only needs a live handle, never the gate itself
func TestGovernance_Layering(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	rules := []struct {
		from      string
		forbidden string
	}{
		{from: modulePath + "/pkg/", forbidden: modulePath + "/internal/"},
		{from: modulePath + "/internal/gate", forbidden: modulePath + "/internal/cli"},
		{from: modulePath + "/internal/catalog", forbidden: modulePath + "/internal/cli"},
		{from: modulePath + "/internal/catalog", forbidden: modulePath + "/internal/gate"},
	}

	for _, p := range pkgs {
		for _, rule := range rules {
			if !strings.HasPrefix(p.PkgPath, rule.from) {
				continue
			}
			for imp := range p.Imports {
				if strings.HasPrefix(imp, rule.forbidden) {
					t.Errorf("LAYERING VIOLATION: '%s' imports '%s'",
						strings.TrimPrefix(p.PkgPath, modulePath+"/"),
						strings.TrimPrefix(imp, modulePath+"/"))
				}
			}
		}
	}
}
