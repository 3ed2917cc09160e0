package blob

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// Backends are reached through this package only; everything else depends on
// the Store interface.
func TestOnlyBlobTreeImportsBackends(t *testing.T) {
	const (
		backendPrefix = "trackcore/internal/infra/blob"
		allowedPrefix = "trackcore/internal/blob"
	)
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "trackcore/...")
	require.NoError(t, err)

	seen := map[string]struct{}{}
	for _, pkg := range pkgs {
		if hasPathPrefix(pkg.PkgPath, allowedPrefix) || hasPathPrefix(pkg.PkgPath, backendPrefix) {
			continue
		}
		for imp := range pkg.Imports {
			if hasPathPrefix(imp, backendPrefix) {
				seen[pkg.PkgPath+" -> "+imp] = struct{}{}
			}
		}
	}
	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	require.Empty(t, violations, "blob backends imported outside %s", allowedPrefix)
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
