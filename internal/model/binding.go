package model

// Binding is a partial mapping from a pattern's variable names to word
// indices within one Tree. A successful match is a total binding for
// every MATCH variable plus every OPTIONAL variable whose block succeeded.
type Binding map[string]int

// Clone returns a shallow copy, used by the matcher when it needs to
// extend a binding along independent branches without aliasing the
// original (e.g. the Cartesian product across OPTIONAL blocks, §4.4).
func (b Binding) Clone() Binding {
	c := make(Binding, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}
