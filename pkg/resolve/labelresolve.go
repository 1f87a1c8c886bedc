package resolve

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/check"
	"ccfront/pkg/diag"
	"ccfront/pkg/source"
)

// ResolveLabels runs the two-phase pass spec.md §4.3 describes, function
// by function: first mint loop/switch labels and wire break/continue/
// case/default, then resolve goto against the user labels collected in
// the same function.
func ResolveLabels(prog *ast.Program, counter *Counter, srcMap *source.Map) error {
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		lr := &labelResolver{funcName: fd.Name, counter: counter, srcMap: srcMap}
		if err := lr.walk(fd.Body); err != nil {
			return err
		}
		gr := &gotoResolver{funcName: fd.Name, srcMap: srcMap, labels: map[string]bool{}}
		if err := gr.collect(fd.Body); err != nil {
			return err
		}
		if err := gr.assign(fd.Body); err != nil {
			return err
		}
	}
	return nil
}

// ---- phase 1: loops, switches, break/continue/case/default ----

type frameKind int

const (
	frameLoop frameKind = iota
	frameSwitch
)

type frame struct {
	kind frameKind
	label string
	sw    *ast.Switch
}

type labelResolver struct {
	funcName string
	counter  *Counter
	srcMap   *source.Map
	stack    []frame
}

func (lr *labelResolver) errAt(pos source.Ptr, format string, args ...interface{}) error {
	return diag.New(diag.PhaseLabelRes, lr.srcMap.Locate(pos), format, args...)
}

func (lr *labelResolver) pushLoop(label string) { lr.stack = append(lr.stack, frame{kind: frameLoop, label: label}) }
func (lr *labelResolver) pushSwitch(label string, sw *ast.Switch) {
	lr.stack = append(lr.stack, frame{kind: frameSwitch, label: label, sw: sw})
}
func (lr *labelResolver) pop() { lr.stack = lr.stack[:len(lr.stack)-1] }

func (lr *labelResolver) nearestAny() (frame, bool) {
	if len(lr.stack) == 0 {
		return frame{}, false
	}
	return lr.stack[len(lr.stack)-1], true
}

func (lr *labelResolver) nearestLoop() (frame, bool) {
	for i := len(lr.stack) - 1; i >= 0; i-- {
		if lr.stack[i].kind == frameLoop {
			return lr.stack[i], true
		}
	}
	return frame{}, false
}

func (lr *labelResolver) nearestSwitch() (frame, bool) {
	for i := len(lr.stack) - 1; i >= 0; i-- {
		if lr.stack[i].kind == frameSwitch {
			return lr.stack[i], true
		}
	}
	return frame{}, false
}

func (lr *labelResolver) walk(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			if err := lr.walk(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		if err := lr.walk(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return lr.walk(n.Else)
		}
		return nil
	case *ast.Labeled:
		return lr.walk(n.Stmt)
	case *ast.While:
		n.Label = lr.counter.Mint(lr.funcName + ".loop")
		lr.pushLoop(n.Label)
		err := lr.walk(n.Body)
		lr.pop()
		return err
	case *ast.DoWhile:
		n.Label = lr.counter.Mint(lr.funcName + ".loop")
		lr.pushLoop(n.Label)
		err := lr.walk(n.Body)
		lr.pop()
		return err
	case *ast.For:
		n.Label = lr.counter.Mint(lr.funcName + ".loop")
		lr.pushLoop(n.Label)
		err := lr.walk(n.Body)
		lr.pop()
		return err
	case *ast.Switch:
		n.Label = lr.counter.Mint(lr.funcName + ".switch")
		lr.pushSwitch(n.Label, n)
		err := lr.walk(n.Body)
		lr.pop()
		return err
	case *ast.Break:
		fr, ok := lr.nearestAny()
		if !ok {
			return lr.errAt(n.Pos, "'break' outside a loop or switch")
		}
		n.Label = fr.label
		return nil
	case *ast.Continue:
		fr, ok := lr.nearestLoop()
		if !ok {
			return lr.errAt(n.Pos, "'continue' outside a loop")
		}
		n.Label = fr.label
		return nil
	case *ast.Case:
		fr, ok := lr.nearestSwitch()
		if !ok {
			return lr.errAt(n.Pos, "'case' outside a switch")
		}
		val, _, ok := check.EvalConst(n.Value)
		if !ok {
			return lr.errAt(n.Value.Loc(), "case label is not a compile-time constant")
		}
		for _, c := range fr.sw.Cases {
			if c.Value == val {
				return lr.errAt(n.Pos, "duplicate case value %d", val)
			}
		}
		n.Label = lr.counter.Mint(lr.funcName + ".case")
		fr.sw.Cases = append(fr.sw.Cases, ast.CaseDescriptor{Value: val, Label: n.Label})
		return lr.walk(n.Body)
	case *ast.Default:
		fr, ok := lr.nearestSwitch()
		if !ok {
			return lr.errAt(n.Pos, "'default' outside a switch")
		}
		if fr.sw.DefaultLabel != "" {
			return lr.errAt(n.Pos, "multiple 'default' labels in one switch")
		}
		n.Label = lr.counter.Mint(lr.funcName + ".default")
		fr.sw.DefaultLabel = n.Label
		return lr.walk(n.Body)
	default:
		return nil
	}
}

// ---- phase 2: goto/user labels ----

type gotoResolver struct {
	funcName string
	srcMap   *source.Map
	labels   map[string]bool
}

func (gr *gotoResolver) errAt(pos source.Ptr, format string, args ...interface{}) error {
	return diag.New(diag.PhaseLabelRes, gr.srcMap.Locate(pos), format, args...)
}

func (gr *gotoResolver) collect(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			if err := gr.collect(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		if err := gr.collect(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return gr.collect(n.Else)
		}
		return nil
	case *ast.Labeled:
		if gr.labels[n.Name] {
			return gr.errAt(n.Pos, "duplicate label '%s'", n.Name)
		}
		gr.labels[n.Name] = true
		n.Target = gr.funcName + ".user." + n.Name
		return gr.collect(n.Stmt)
	case *ast.While:
		return gr.collect(n.Body)
	case *ast.DoWhile:
		return gr.collect(n.Body)
	case *ast.For:
		return gr.collect(n.Body)
	case *ast.Switch:
		return gr.collect(n.Body)
	case *ast.Case:
		return gr.collect(n.Body)
	case *ast.Default:
		return gr.collect(n.Body)
	default:
		return nil
	}
}

func (gr *gotoResolver) assign(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			if err := gr.assign(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		if err := gr.assign(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return gr.assign(n.Else)
		}
		return nil
	case *ast.Labeled:
		return gr.assign(n.Stmt)
	case *ast.While:
		return gr.assign(n.Body)
	case *ast.DoWhile:
		return gr.assign(n.Body)
	case *ast.For:
		return gr.assign(n.Body)
	case *ast.Switch:
		return gr.assign(n.Body)
	case *ast.Case:
		return gr.assign(n.Body)
	case *ast.Default:
		return gr.assign(n.Body)
	case *ast.Goto:
		if !gr.labels[n.Name] {
			return gr.errAt(n.Pos, "no label '%s' in this function", n.Name)
		}
		n.Target = gr.funcName + ".user." + n.Name
		return nil
	default:
		return nil
	}
}
