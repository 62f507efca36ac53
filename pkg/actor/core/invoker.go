package core

import "sync"

// Invoker runs process bodies and distributer loops concurrently. It is
// the seam spec.md §5 calls "some work-stealing concurrent executor" —
// here it is just Go's own goroutine scheduler, kept behind an interface
// rather than bare `go` statements scattered through the codebase. NewNode
// always installs GoInvoker, whose WaitGroup lets Release drain
// deterministically; NodeConfig has no field for supplying another Invoker.
type Invoker interface {
	// Spawn runs f on its own goroutine.
	Spawn(f func())

	// Stop blocks until every goroutine previously started by Spawn has
	// returned. It is safe to call Stop concurrently with in-flight Spawn
	// calls made before it.
	Stop()
}

// GoInvoker is the production Invoker: every Spawn is a bare goroutine
// tracked by a WaitGroup so Stop can wait for drain on node release.
type GoInvoker struct {
	group sync.WaitGroup
}

// NewGoInvoker builds the default Invoker.
func NewGoInvoker() *GoInvoker {
	return &GoInvoker{}
}

func (g *GoInvoker) Spawn(f func()) {
	g.group.Add(1)
	go func() {
		defer g.group.Done()
		f()
	}()
}

func (g *GoInvoker) Stop() {
	g.group.Wait()
}
