package mimeo

import "fmt"

// workItem is one pending edge of the traversal: duplicate src and store
// the result into owner's slot. last marks the owner's final edge so the
// source's frozen flag can be applied once every slot is filled.
type workItem struct {
	owner    any    // destination composite receiving the result
	ownerSrc any    // source composite the edge came from
	key      any    // mapping key or record member name
	idx      int    // sequence position or pair slot; -1 otherwise
	src      any    // source child value
	getter   Getter // computed member carried without evaluation
	last     bool   // owner's final edge
}

// traversal drives one duplication operation. An explicit work stack
// replaces recursion so arbitrarily deep and cyclic graphs traverse in
// constant goroutine stack space.
type traversal struct {
	registry   *Registry
	capability Capability
	hint       Hint
	flatten    bool
	visited    map[any]any
	stack      []workItem
	nodes      int
}

func newTraversal(reg *Registry, capability Capability, hint Hint, flatten bool) *traversal {
	return &traversal{
		registry:   reg,
		capability: capability,
		hint:       hint,
		flatten:    flatten,
		visited:    make(map[any]any),
	}
}

// run duplicates root and drains the work stack.
func (t *traversal) run(root any) (any, error) {
	out, err := t.process(root)
	if err != nil {
		return nil, err
	}
	for len(t.stack) > 0 {
		item := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		if err := t.step(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// step resolves one edge: duplicate the source child, or pass it through
// by reference in shallow mode, and assign the result into the owner.
func (t *traversal) step(item workItem) error {
	var out any
	switch {
	case item.getter != nil:
		// carried as a computed member; assign installs the getter
	case t.hint == HintShallow:
		out = item.src
	default:
		var err error
		out, err = t.process(item.src)
		if err != nil {
			return err
		}
	}
	if err := assign(item, out); err != nil {
		return err
	}
	if item.last {
		t.finalize(item.owner, item.ownerSrc)
	}
	return nil
}

// process duplicates a single value, returning its shell immediately and
// deferring children to the work stack. Sharing and cycles resolve through
// the visited map: the shell is recorded before any child edge runs, so
// back references land on the duplicate under construction.
func (t *traversal) process(v any) (any, error) {
	if k, ok := identityKey(v); ok {
		if out, seen := t.visited[k]; seen {
			return out, nil
		}
	}

	// Custom handlers short-circuit the default strategy. The result is
	// recorded so sharing survives, but the engine never descends into it.
	if h, ok := t.registry.Lookup(v, t.capability); ok {
		out, err := h(v, t.hint)
		if err != nil {
			return nil, newHandlerError(t.capability, typeName(v), err)
		}
		if k, ok := identityKey(v); ok {
			t.visited[k] = out
		}
		return out, nil
	}

	v = normalizeNative(v)
	key, hasID := identityKey(v)
	if hasID {
		if out, seen := t.visited[key]; seen {
			return out, nil
		}
	}

	kind := Classify(v)
	switch kind {
	case KindPrimitive:
		return v, nil

	case KindOpaque:
		var out any
		if t.flatten {
			out = flattenOpaque(v)
		} else {
			out = opaqueCopy(v)
		}
		if hasID {
			t.visited[key] = out
		}
		return out, nil

	case KindWrapper:
		if t.flatten {
			if hasID {
				// provisional entry so a degenerate self-boxed wrapper
				// terminates instead of recursing forever
				t.visited[key] = nil
			}
			out, err := t.process(unwrapValue(v))
			if err != nil {
				return nil, err
			}
			if hasID {
				t.visited[key] = out
			}
			return out, nil
		}
	}

	shell, edges := buildShell(v, kind, t.flatten, t.registry)
	if shell == nil {
		return nil, newInvariantError(fmt.Sprintf("no shell for %s (%s)", typeName(v), kind))
	}
	if hasID {
		t.visited[key] = shell
	}
	t.nodes++

	if len(edges) == 0 {
		t.finalize(shell, v)
		return shell, nil
	}
	for i := len(edges) - 1; i >= 0; i-- {
		e := edges[i]
		if e.owner == nil {
			e.owner = shell
			e.ownerSrc = v
		}
		e.last = i == len(edges)-1
		t.stack = append(t.stack, e)
	}
	return shell, nil
}

// finalize applies the source's frozen flag once a duplicate's slots are
// all filled. Flatten output is plain data and carries no flag.
func (t *traversal) finalize(shell, src any) {
	if t.flatten || src == nil {
		return
	}
	if IsFrozen(src) {
		setFrozen(shell, true)
	}
}

// assign stores a resolved child into its owner slot. A false report from
// a node mutator here means the traversal order itself broke, since owners
// are only finalized after their last edge.
func assign(item workItem, out any) error {
	switch o := item.owner.(type) {
	case *Sequence:
		if !o.Set(item.idx, out) {
			return newInvariantError(fmt.Sprintf("sequence slot %d rejected assignment", item.idx))
		}
	case *Mapping:
		if !o.Set(item.key, out) {
			return newInvariantError(fmt.Sprintf("mapping key %v rejected assignment", item.key))
		}
	case *Set:
		if !o.Add(out) {
			return newInvariantError("set member collision after duplication")
		}
	case *Record:
		name, _ := item.key.(string)
		if item.getter != nil {
			if !o.DefineGetter(name, item.getter) {
				return newInvariantError(fmt.Sprintf("record member %s rejected getter", name))
			}
		} else if !o.Set(name, out) {
			return newInvariantError(fmt.Sprintf("record member %s rejected assignment", name))
		}
	case *Wrapper:
		o.value = out
	case []any:
		if item.idx < 0 || item.idx >= len(o) {
			return newInvariantError(fmt.Sprintf("pair slot %d out of range", item.idx))
		}
		o[item.idx] = out
	case map[string]any:
		name, _ := item.key.(string)
		o[name] = out
	default:
		return newInvariantError(fmt.Sprintf("unassignable owner %s", typeName(item.owner)))
	}
	return nil
}
