package script

import (
	"fmt"
	"math"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to a Go value.
func ToGo(lv lua.LValue) any {
	return toGo(lv, make(map[*lua.LTable]bool))
}

func toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // cycle
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a table to []any when its keys are exactly 1..n and
// to map[string]any otherwise. The empty table becomes an empty map.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	count, maxN := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok || float64(kn) != math.Trunc(float64(kn)) || kn < 1 {
			isArray = false
			return
		}
		maxN = max(maxN, int(kn))
	})

	if isArray && count > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprint(ToGo(kv))
		default:
			key = k.String()
		}
		m[key] = toGo(v, visited)
	})
	return m
}

// ToLua converts a Go value to a Lua value owned by L.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := L.CreateTable(len(val), 0)
		for i, item := range val {
			t.RawSetInt(i+1, ToLua(L, item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(val))
		for k, item := range val {
			t.RawSetString(k, ToLua(L, item))
		}
		return t
	default:
		return reflectToLua(L, reflect.ValueOf(v))
	}
}

func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	if !rv.IsValid() {
		return lua.LNil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return reflectToLua(L, rv.Elem())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := L.CreateTable(rv.Len(), 0)
		for i := range rv.Len() {
			t.RawSetInt(i+1, reflectToLua(L, rv.Index(i)))
		}
		return t
	case reflect.Map:
		t := L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(reflectToLua(L, iter.Key()), reflectToLua(L, iter.Value()))
		}
		return t
	case reflect.Struct:
		t := L.CreateTable(0, rv.NumField())
		rt := rv.Type()
		for i := range rv.NumField() {
			if field := rt.Field(i); field.IsExported() {
				t.RawSetString(field.Name, reflectToLua(L, rv.Field(i)))
			}
		}
		return t
	default:
		ud := L.NewUserData()
		ud.Value = rv.Interface()
		return ud
	}
}
