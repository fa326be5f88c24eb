package dag

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

// memberIndexOf mimics a workspace member list: position in order, -1 for
// unknown names.
func memberIndexOf(order ...string) func(string) int {
	return func(name string) int {
		for i, n := range order {
			if n == name {
				return i
			}
		}
		return -1
	}
}

// assertTopological checks that every holder appears after all holders it
// depends on.
func assertTopological(t *testing.T, g *Graph, plan []string) {
	t.Helper()
	pos := make(map[string]int, len(plan))
	for i, p := range plan {
		pos[p] = i
	}
	for _, a := range plan {
		for _, b := range plan {
			if a != b && g.DependsOn(a, b) {
				assert.Less(t, pos[b], pos[a], "%s depends on %s but is scheduled first", a, b)
			}
		}
	}
}

func TestPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("chain schedules dependencies first", func(t *testing.T) {
		g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"c", "b"}, {"b", "a"}})
		plan, err := Plan(ctx, g, []string{"c", "a", "b"}, memberIndexOf("a", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, plan)
	})

	t.Run("ordering holds across a gap in the holders", func(t *testing.T) {
		// c -> b -> a, but only a and c hold a task. The plan must still
		// order a before c even though the connecting edge goes through b.
		g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"c", "b"}, {"b", "a"}})
		plan, err := Plan(ctx, g, []string{"c", "a"}, memberIndexOf("a", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, plan)
	})

	t.Run("diamond", func(t *testing.T) {
		g := buildGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
			{"d", "b"}, {"d", "c"}, {"b", "a"}, {"c", "a"},
		})
		plan, err := Plan(ctx, g, []string{"d", "c", "b", "a"}, memberIndexOf("a", "b", "c", "d"))
		require.NoError(t, err)
		assertTopological(t, g, plan)
		assert.Equal(t, "a", plan[0])
		assert.Equal(t, "d", plan[3])
	})

	t.Run("tie-break follows member order", func(t *testing.T) {
		g := buildGraph(t, []string{"x", "y", "z"}, nil)
		plan, err := Plan(ctx, g, []string{"z", "x", "y"}, memberIndexOf("y", "z", "x"))
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "z", "x"}, plan)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		g := buildGraph(t, []string{"a", "b", "c", "d", "e"}, [][2]string{
			{"e", "c"}, {"d", "c"}, {"c", "a"}, {"c", "b"},
		})
		holders := []string{"a", "b", "c", "d", "e"}
		index := memberIndexOf("b", "a", "c", "e", "d")

		first, err := Plan(ctx, g, holders, index)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			again, err := Plan(ctx, g, holders, index)
			require.NoError(t, err)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("plan is not deterministic (-first +again):\n%s", diff)
			}
		}
	})

	t.Run("cycle among holders is rejected", func(t *testing.T) {
		g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{
			{"a", "b"}, {"b", "a"},
		})
		plan, err := Plan(ctx, g, []string{"a", "b", "c"}, memberIndexOf("a", "b", "c"))
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Empty(t, plan)
		assert.Equal(t, []string{"a", "b"}, cycleErr.Packages)
	})

	t.Run("unrelated branches keep relative member order", func(t *testing.T) {
		g := buildGraph(t, []string{"a1", "a2", "b1", "b2"}, [][2]string{
			{"a2", "a1"}, {"b2", "b1"},
		})
		plan, err := Plan(ctx, g, []string{"b2", "a2", "b1", "a1"}, memberIndexOf("a1", "a2", "b1", "b2"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, plan)
	})

	t.Run("empty holder set yields empty plan", func(t *testing.T) {
		g := buildGraph(t, []string{"a"}, nil)
		plan, err := Plan(ctx, g, nil, memberIndexOf("a"))
		require.NoError(t, err)
		assert.Empty(t, plan)
	})
}
