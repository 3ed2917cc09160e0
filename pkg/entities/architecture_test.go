package entities

import (
	"testing"

	"trackcore/testutil"
)

func TestEntitiesAreStorageAgnostic(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "stores are passed to NewRegistry")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.StorageDriverForbidden, "stores are passed to NewRegistry")
}
