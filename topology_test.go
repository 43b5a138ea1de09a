package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTopology(t *testing.T) {
	t.Run("local node becomes head, rest workers in order", func(t *testing.T) {
		topo, err := ResolveTopology(
			[]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
			[]string{"127.0.0.1", "10.0.0.2"},
		)
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.2", topo.Head)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.3"}, topo.Workers)
	})

	t.Run("single node cluster has no workers", func(t *testing.T) {
		topo, err := ResolveTopology([]string{"10.0.0.2"}, []string{"10.0.0.2"})
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.2", topo.Head)
		assert.Empty(t, topo.Workers)
	})

	t.Run("no local node", func(t *testing.T) {
		_, err := ResolveTopology(
			[]string{"10.0.0.1", "10.0.0.3"},
			[]string{"192.168.1.5"},
		)
		assert.ErrorIs(t, err, ErrHeadNotLocal)
	})

	t.Run("two nodes bound locally", func(t *testing.T) {
		_, err := ResolveTopology(
			[]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
			[]string{"10.0.0.1", "10.0.0.2"},
		)
		require.ErrorIs(t, err, ErrMultipleLocalNodes)
		assert.Contains(t, err.Error(), "10.0.0.1 and 10.0.0.2")
	})

	t.Run("worker order follows node set order", func(t *testing.T) {
		topo, err := ResolveTopology(
			[]string{"10.0.0.9", "10.0.0.4", "10.0.0.7", "10.0.0.1"},
			[]string{"10.0.0.4"},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.9", "10.0.0.7", "10.0.0.1"}, topo.Workers)
	})
}

func TestDedupeNodes(t *testing.T) {
	assert.Equal(t,
		[]string{"10.0.0.3", "10.0.0.1", "10.0.0.2"},
		dedupeNodes([]string{"10.0.0.3", "10.0.0.1", "10.0.0.3", "10.0.0.2", "10.0.0.1"}))
	assert.Empty(t, dedupeNodes(nil))
}
