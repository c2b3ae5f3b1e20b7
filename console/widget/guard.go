package widget

// Guard suppresses re-entrant handling while a programmatic mutation is in
// flight, e.g. a setter whose own change handler would trigger it again.
type Guard struct {
	busy bool
}

// Busy reports whether a guarded function is running.
func (g *Guard) Busy() bool {
	return g.busy
}

// Run calls fn unless the guard is busy already.  It reports whether fn ran.
func (g *Guard) Run(fn func()) bool {
	if g.busy {
		return false
	}
	g.busy = true
	defer func() { g.busy = false }()
	fn()
	return true
}
