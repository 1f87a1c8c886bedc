package tac

import (
	"fmt"
	"strings"
)

// Text renders p in a flat, greppable textual form for the CLI driver's
// --emit-tac flag. Grounded on the teacher's CodeGen.line/comment helpers
// (pkg/compiler/codegen.go): one instruction per line, "; " comments
// marking each top-level's header.
func (p *Program) Text() string {
	var b strings.Builder
	for _, tl := range p.TopLevels {
		switch n := tl.(type) {
		case Function:
			kind := "static"
			if n.Global {
				kind = "global"
			}
			fmt.Fprintf(&b, "; %s function %s(%s)\n", kind, n.Name, strings.Join(n.Params, ", "))
			for _, instr := range n.Body {
				fmt.Fprintf(&b, "    %s\n", instr.String())
			}
		case StaticVar:
			kind := "static"
			if n.Global {
				kind = "global"
			}
			fmt.Fprintf(&b, "; %s data %s (%d bytes)\n", kind, n.Name, staticLen(n))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func staticLen(sv StaticVar) int {
	total := 0
	for _, chunk := range sv.Init {
		if chunk.Bytes != nil {
			total += len(chunk.Bytes)
		} else {
			total += chunk.ZeroLen
		}
	}
	return total
}
