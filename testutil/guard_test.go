package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestPredicates(t *testing.T) {
	assert.True(t, InternalImportForbidden("trackcore/internal/core"))
	assert.False(t, InternalImportForbidden("trackcore/pkg/model"))

	assert.True(t, ReflectImportForbidden("reflect"))
	assert.False(t, ReflectImportForbidden("github.com/example/reflectx"))

	assert.True(t, StorageDriverForbidden("database/sql"))
	assert.True(t, StorageDriverForbidden("database/sql/driver"))
	assert.True(t, StorageDriverForbidden("github.com/redis/go-redis/v9"))
	assert.True(t, StorageDriverForbidden("go.etcd.io/bbolt"))
	assert.False(t, StorageDriverForbidden("database/sqlish"))
	assert.False(t, StorageDriverForbidden("go.uber.org/zap"))
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\t\"reflect\"\n)\nvar _ = fmt.Sprint\nvar _ = reflect.TypeOf\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport \"database/sql\"\nvar _ sql.DB\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.go"), 0o755))

	viols, err := directImportViolations(dir, ReflectImportForbidden)
	require.NoError(t, err)
	assert.Equal(t, []string{"reflect (in a.go)"}, viols)

	viols, err = directImportViolations(dir, StorageDriverForbidden)
	require.NoError(t, err)
	assert.Empty(t, viols, "test files are ignored")

	AssertNoDirectImports(t, dir, InternalImportForbidden, "no internal imports")
}

func TestDirectImportViolationsErrors(t *testing.T) {
	_, err := directImportViolations(filepath.Join(t.TempDir(), "missing"), ReflectImportForbidden)
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "broken.go", "package")
	_, err = directImportViolations(dir, ReflectImportForbidden)
	assert.Error(t, err)
}

func TestTransitiveDependencyViolations(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\n\ndatabase/sql\ntrackcore/pkg/model\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", StorageDriverForbidden)
	require.NoError(t, err)
	assert.Equal(t, []string{"database/sql"}, viols)

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	_, out, err := transitiveDependencyViolations("./...", StorageDriverForbidden)
	assert.Error(t, err)
	assert.Equal(t, "boom", string(out))
}

func TestFailIfViolations(t *testing.T) {
	rec := &recordingFatal{}
	failIfViolations(rec, "forbidden", "reason", nil)
	assert.Empty(t, rec.msg)

	failIfViolations(rec, "forbidden", "reason", []string{"a", "b"})
	assert.Equal(t, "forbidden (reason):\na\nb", rec.msg)
}
