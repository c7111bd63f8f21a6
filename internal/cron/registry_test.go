package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryPreservesOrderAndSkipsNil(t *testing.T) {
	first := &fakeJob{name: "first"}
	second := &fakeJob{name: "second"}

	registry := NewRegistry(first, nil, second)
	registry.Register(nil)

	third := &fakeJob{name: "third"}
	registry.Register(third)

	jobs := registry.Jobs()
	assert.Len(t, jobs, 3)
	assert.Equal(t, "first", jobs[0].Name())
	assert.Equal(t, "second", jobs[1].Name())
	assert.Equal(t, "third", jobs[2].Name())
}

func TestRegistryJobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(&fakeJob{name: "only"})

	jobs := registry.Jobs()
	jobs[0] = &fakeJob{name: "swapped"}

	assert.Equal(t, "only", registry.Jobs()[0].Name())
}
