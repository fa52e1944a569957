package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-ioc/framework/container"
)

func TestGraph_RecordDependencyBothDirections(t *testing.T) {
	g := container.NewDependencyGraph()
	g.RecordDependency("pool", "worker")
	g.RecordDependency("pool", "janitor")

	assert.ElementsMatch(t, []string{"worker", "janitor"}, g.DependentsOf("pool"))
	assert.Equal(t, []string{"pool"}, g.DependenciesOf("worker"))
	assert.True(t, g.HasDependents("pool"))
	assert.False(t, g.HasDependents("worker"))
}

func TestGraph_EmptySnapshotsNotNil(t *testing.T) {
	g := container.NewDependencyGraph()
	assert.NotNil(t, g.DependentsOf("nothing"))
	assert.Empty(t, g.DependentsOf("nothing"))
	assert.NotNil(t, g.DependenciesOf("nothing"))
	assert.Empty(t, g.ContainedBy("nothing"))
}

func TestGraph_ContainmentImpliesDependency(t *testing.T) {
	g := container.NewDependencyGraph()
	g.RecordContainment("inner", "outer")

	assert.Equal(t, []string{"inner"}, g.ContainedBy("outer"))
	// the outer component depends on its inner one: outer goes down first
	assert.Equal(t, []string{"outer"}, g.DependentsOf("inner"))
	assert.Equal(t, []string{"inner"}, g.DependenciesOf("outer"))
}

func TestGraph_SnapshotsAreCopies(t *testing.T) {
	g := container.NewDependencyGraph()
	g.RecordDependency("a", "b")

	snapshot := g.DependentsOf("a")
	snapshot[0] = "mutated"
	assert.Equal(t, []string{"b"}, g.DependentsOf("a"))
}

func TestGraph_ForgetScrubsEverywhere(t *testing.T) {
	g := container.NewDependencyGraph()
	g.RecordDependency("a", "b")
	g.RecordDependency("c", "b")
	g.RecordDependency("b", "d")
	g.RecordContainment("b", "outer")

	g.Forget("b")

	assert.Empty(t, g.DependentsOf("a"), "b gone as a dependent of a")
	assert.Empty(t, g.DependentsOf("c"))
	assert.Empty(t, g.DependentsOf("b"), "b gone as a key")
	assert.Empty(t, g.DependenciesOf("b"))
	assert.Empty(t, g.ContainedBy("outer"))

	// d's transpose entry no longer mentions b
	assert.Empty(t, g.DependenciesOf("d"))
}

func TestGraph_Reset(t *testing.T) {
	g := container.NewDependencyGraph()
	g.RecordDependency("a", "b")
	g.RecordContainment("x", "y")

	g.Reset()
	assert.Empty(t, g.DependentsOf("a"))
	assert.Empty(t, g.ContainedBy("y"))
}
