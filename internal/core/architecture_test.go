package core

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// Record store backends are selected here; the CLI and the public packages
// reach them only through OpenStores.
func TestOnlyCoreImportsPersistenceBackends(t *testing.T) {
	const backendPrefix = "trackcore/internal/infra/persistence/"
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "trackcore/...")
	require.NoError(t, err)

	var violations []string
	for _, pkg := range pkgs {
		if pkg.PkgPath == "trackcore/internal/core" || strings.HasPrefix(pkg.PkgPath, backendPrefix) {
			continue
		}
		for imp := range pkg.Imports {
			if strings.HasPrefix(imp, backendPrefix) {
				violations = append(violations, pkg.PkgPath+" -> "+imp)
			}
		}
	}
	sort.Strings(violations)
	require.Empty(t, violations, "persistence backends imported outside internal/core")
}
