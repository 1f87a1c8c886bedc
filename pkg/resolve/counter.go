// Package resolve implements the identifier-resolution and
// label-resolution passes (spec.md §4.2, §4.3). Both rewrite the AST in
// place and share the single monotonic counter that mints every unique
// variable name, loop/switch label, and (later, in pkg/tac) temporary
// (spec.md §5: "not reset between functions").
package resolve

import "fmt"

// Counter mints globally-unique suffixed names of the form
// "<prefix>.<n>" (spec.md §4.2 "original.<counter>", §4.3
// "<funcname>.<kind>.<counter>").
type Counter struct{ n int }

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Mint(prefix string) string {
	c.n++
	return fmt.Sprintf("%s.%d", prefix, c.n)
}
