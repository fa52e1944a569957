package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

func TestAliasTable_CanonicalResolvesChains(t *testing.T) {
	table := container.NewAliasTable()
	require.NoError(t, table.Register("store", "db"))
	require.NoError(t, table.Register("db", "database"))

	tests := []struct {
		name string
		want string
	}{
		{"database", "store"},
		{"db", "store"},
		{"store", "store"},
		{"unrelated", "unrelated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Canonical(tt.name))
		})
	}
}

func TestAliasTable_SelfAliasRemovesMapping(t *testing.T) {
	table := container.NewAliasTable()
	require.NoError(t, table.Register("store", "db"))
	require.True(t, table.IsAlias("db"))

	require.NoError(t, table.Register("db", "db"))
	assert.False(t, table.IsAlias("db"))
	assert.Equal(t, "db", table.Canonical("db"))
}

func TestAliasTable_RejectsCycles(t *testing.T) {
	table := container.NewAliasTable()
	require.NoError(t, table.Register("a", "b"))
	require.NoError(t, table.Register("b", "c"))

	err := table.Register("c", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrAliasCycle)

	// Direct two-node loop
	err = table.Register("b", "a")
	assert.ErrorIs(t, err, container.ErrAliasCycle)
}

func TestAliasTable_ReRegisterReplacesTarget(t *testing.T) {
	table := container.NewAliasTable()
	require.NoError(t, table.Register("old", "name"))
	require.NoError(t, table.Register("new", "name"))
	assert.Equal(t, "new", table.Canonical("name"))
}

func TestAliasTable_RemoveAndAliases(t *testing.T) {
	table := container.NewAliasTable()
	require.NoError(t, table.Register("store", "db"))
	require.NoError(t, table.Register("db", "database"))

	aliases := table.Aliases("store")
	assert.ElementsMatch(t, []string{"db", "database"}, aliases)

	assert.True(t, table.Remove("db"))
	assert.False(t, table.Remove("db"))
	assert.Equal(t, "db", table.Canonical("db"))
	// "database" pointed at "db", which now resolves to itself
	assert.Equal(t, "db", table.Canonical("database"))
}
