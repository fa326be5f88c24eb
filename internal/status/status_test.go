package status

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	t.Run("right-aligned verb", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, Normal).Status("Generating", "`api`")
		assert.Equal(t, "  Generating `api`\n", buf.String())
	})

	t.Run("quiet suppresses status", func(t *testing.T) {
		var buf bytes.Buffer
		s := New(&buf, Quiet)
		s.Status("Generating", "`api`")
		assert.Empty(t, buf.String())
	})

	t.Run("quiet never suppresses errors", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, Quiet).Error("something broke")
		assert.Equal(t, "error: something broke\n", buf.String())
	})
}

func TestErrorChain(t *testing.T) {
	root := errors.New("exit status 1")
	mid := fmt.Errorf("failed to run `gen`: %w", root)
	top := fmt.Errorf("generate failed for package \"api\": %w", mid)

	var buf bytes.Buffer
	New(&buf, Normal).ErrorChain(top)

	out := buf.String()
	assert.Contains(t, out, "error: generate failed for package \"api\"")
	assert.Contains(t, out, "Caused by:\n    failed to run `gen`: exit status 1")
	assert.Contains(t, out, "Caused by:\n    exit status 1")
}
