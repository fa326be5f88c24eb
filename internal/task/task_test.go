package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wsgen/internal/task"
	"github.com/vk/wsgen/internal/testutil"
	"github.com/vk/wsgen/internal/workspace"
)

func loadSinglePackage(t *testing.T, generate, verify string) *workspace.Package {
	t.Helper()
	root := testutil.WriteWorkspace(t, testutil.PkgSpec{
		Name:     "api",
		Generate: generate,
		Verify:   verify,
	})
	ws, err := workspace.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, ws.Members, 1)
	return ws.Members[0]
}

func TestResolve(t *testing.T) {
	t.Run("no sections resolves to nothing", func(t *testing.T) {
		pkg := loadSinglePackage(t, "", "")
		descs, err := task.Resolve(pkg)
		require.NoError(t, err)
		assert.Empty(t, descs)
	})

	t.Run("generate section with args", func(t *testing.T) {
		pkg := loadSinglePackage(t, testutil.TaskSection("api_gen", "--fast", "-v"), "")
		descs, err := task.Resolve(pkg)
		require.NoError(t, err)
		require.Len(t, descs, 1)
		assert.Equal(t, task.KindGenerate, descs[0].Kind)
		assert.Equal(t, "api_gen", descs[0].Binary)
		assert.Equal(t, []string{"--fast", "-v"}, descs[0].Args)
	})

	t.Run("args default to empty", func(t *testing.T) {
		pkg := loadSinglePackage(t, testutil.TaskSection("api_gen"), "")
		descs, err := task.Resolve(pkg)
		require.NoError(t, err)
		require.Len(t, descs, 1)
		assert.Empty(t, descs[0].Args)
	})

	t.Run("both sections resolve in generate-then-verify order", func(t *testing.T) {
		pkg := loadSinglePackage(t, testutil.TaskSection("api_gen"), testutil.TaskSection("api_check"))
		descs, err := task.Resolve(pkg)
		require.NoError(t, err)
		require.Len(t, descs, 2)
		assert.Equal(t, task.KindGenerate, descs[0].Kind)
		assert.Equal(t, task.KindVerify, descs[1].Kind)
		assert.Equal(t, "api_check", descs[1].Binary)
	})

	t.Run("unknown kind is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"docker_image\"\nbin = \"x\"\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "api", cfgErr.Package)
		assert.Equal(t, task.KindGenerate, cfgErr.Section)
		assert.Contains(t, cfgErr.Error(), "docker_image")
	})

	t.Run("missing bin is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("empty bin is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\nbin = \"\"\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "bin must not be empty")
	})

	t.Run("null bin is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\nbin = null\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "bin must not be null")
	})

	t.Run("null kind is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = null\nbin = \"x\"\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "kind must not be null")
	})

	t.Run("null args is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\nbin = \"x\"\nargs = null\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "args must not be null")
	})

	t.Run("null args entry is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\nbin = \"x\"\nargs = [\"ok\", null]\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "args[1] must not be null")
	})

	t.Run("non-string args entry is a configuration error", func(t *testing.T) {
		pkg := loadSinglePackage(t, "kind = \"workspace_binary\"\nbin = \"x\"\nargs = [[\"nested\"]]\n", "")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Error(), "args[0]")
	})

	t.Run("malformed verify section names the verify section", func(t *testing.T) {
		pkg := loadSinglePackage(t, testutil.TaskSection("api_gen"), "kind = \"workspace_binary\"\n")
		_, err := task.Resolve(pkg)
		var cfgErr *task.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, task.KindVerify, cfgErr.Section)
	})
}

func TestFor(t *testing.T) {
	pkg := loadSinglePackage(t, testutil.TaskSection("api_gen"), "")

	gen, err := task.For(pkg, task.KindGenerate)
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, "api_gen", gen.Binary)

	ver, err := task.For(pkg, task.KindVerify)
	require.NoError(t, err)
	assert.Nil(t, ver)
}
