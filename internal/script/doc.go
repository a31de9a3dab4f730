// Package script runs Lua code as store listeners.
//
// A Runtime is a sandboxed Lua state with only the base, table, string and
// math libraries. Global Lua functions defined in it can be installed on a
// store as listeners (Transform) or filters (Predicate):
//
//	rt, _ := script.New()
//	_ = rt.DoString(`
//	    function clamp(next, prev)
//	        if next.count < 0 then next.count = 0 end
//	        return next
//	    end
//	`)
//	s.OnChange(rt.Transform("clamp"))
//
// Lua tables become map[string]any, or []any when their keys are 1..n.
// Integral numbers become int64 and other numbers float64.
//
// A Runtime serialises all calls. Bus handlers triggered by the Lua emit
// function must not call back into the same Runtime.
package script
