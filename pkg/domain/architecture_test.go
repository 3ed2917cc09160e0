package domain

import (
	"testing"

	"trackcore/testutil"
)

// TestDomainDoesNotImportInternal keeps the record types free of any
// persistence or wiring code.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on internal packages")
}

func TestDomainDoesNotUseReflection(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ReflectImportForbidden, "property names are constants")
}
