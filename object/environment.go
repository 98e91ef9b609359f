package object

import "sort"

// Layer is one scope of the environment.
type Layer struct {
	store  map[string]Node
	retain bool
	except map[string]struct{}
}

func newLayer() *Layer {
	return &Layer{store: make(map[string]Node)}
}

// Names returns the names bound in the layer, sorted.
func (l *Layer) Names() []string {
	names := make([]string, 0, len(l.store))
	for k := range l.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Environment is a stack of layers. The root layer holds the builtins and
// the global bindings and is never popped.
type Environment struct {
	layers []*Layer
}

// NewEnvironment creates an environment with only the root layer.
func NewEnvironment() *Environment {
	return &Environment{layers: []*Layer{newLayer()}}
}

// Get retrieves a binding, searching from the innermost layer to the root.
func (e *Environment) Get(name string) (Node, bool) {
	for i := len(e.layers) - 1; i >= 0; i-- {
		if v, ok := e.layers[i].store[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in the innermost layer.
func (e *Environment) Set(name string, val Node) Node {
	e.layers[len(e.layers)-1].store[name] = val
	return val
}

// SetRoot binds name in the root layer.
func (e *Environment) SetRoot(name string, val Node) Node {
	e.layers[0].store[name] = val
	return val
}

// Depth returns the number of layers, including the root.
func (e *Environment) Depth() int { return len(e.layers) }

// Innermost returns the innermost layer.
func (e *Environment) Innermost() *Layer { return e.layers[len(e.layers)-1] }

// Root returns the root layer.
func (e *Environment) Root() *Layer { return e.layers[0] }

// Enter pushes a plain layer. The returned function pops it, dropping its
// bindings; callers defer it.
func (e *Environment) Enter() (leave func()) {
	return e.push(newLayer())
}

// EnterRetaining pushes a layer whose bindings survive it: when the
// returned function pops it, every binding whose name is not in except is
// copied into the layer that becomes innermost.
func (e *Environment) EnterRetaining(except []string) (leave func()) {
	l := newLayer()
	l.retain = true
	l.except = make(map[string]struct{}, len(except))
	for _, name := range except {
		l.except[name] = struct{}{}
	}
	return e.push(l)
}

func (e *Environment) push(l *Layer) func() {
	e.layers = append(e.layers, l)
	depth := len(e.layers)
	left := false
	return func() {
		if left {
			return
		}
		left = true
		e.pop(depth)
	}
}

// pop removes layers down to depth-1. Layers above depth can only be left
// over when a callee forgot to leave, so they are discarded too.
func (e *Environment) pop(depth int) {
	if depth <= 1 || depth > len(e.layers) {
		return
	}
	l := e.layers[depth-1]
	for i := depth - 1; i < len(e.layers); i++ {
		e.layers[i] = nil
	}
	e.layers = e.layers[:depth-1]
	if !l.retain {
		return
	}
	outer := e.layers[len(e.layers)-1]
	for name, v := range l.store {
		if _, skip := l.except[name]; skip {
			continue
		}
		outer.store[name] = v
	}
}
