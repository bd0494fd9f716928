package app

import (
	"github.com/vk/bndl/internal/builder"
	"github.com/vk/bndl/internal/builder/remote"
)

// coreBuilders is the definitive list of all Target Graph Builders that are
// compiled into the bndl binary.
var coreBuilders = map[string]builder.Factory{
	"memory": builder.MemoryFactory,
	"remote": remote.Factory,
}

func newBuilderRegistry() *builder.Registry {
	reg := builder.NewRegistry()
	for name, f := range coreBuilders {
		reg.Register(name, f)
	}
	return reg
}
