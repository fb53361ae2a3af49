package record

import "reflect"

// esModuleFlag is the interop marker key that export-all never copies.
const esModuleFlag = "__esModule"

// ExportAll copies every binding of source onto target as a live accessor:
// reading a copied key always reflects the current value in source, not a
// snapshot taken at copy time. The "default" binding and the ESM-interop
// marker are left untouched, and keys that cannot be defined on the target
// are skipped rather than aborting the whole operation.
//
// Self-exports, primitives, slices, and in-flight futures are not
// legitimate export sources and are ignored entirely.
func ExportAll(target *Namespace, source any) {
	if source == nil || target == nil {
		return
	}
	if src, ok := source.(*Namespace); ok {
		if src == target {
			return
		}
		for _, key := range src.Keys() {
			if key == "default" || key == esModuleFlag {
				continue
			}
			key := key
			_ = target.DefineGetter(key, func() any {
				v, _ := src.Get(key)
				return v
			})
		}
		return
	}
	if _, ok := source.(*Future); ok {
		return
	}
	if src, ok := source.(map[string]any); ok {
		for key := range src {
			if key == "default" || key == esModuleFlag {
				continue
			}
			key := key
			_ = target.DefineGetter(key, func() any { return src[key] })
		}
		return
	}
	// Primitives, slices, arrays, and anything else shapeless.
	switch reflect.ValueOf(source).Kind() {
	case reflect.Map:
		src := reflect.ValueOf(source)
		for _, mk := range src.MapKeys() {
			if mk.Kind() != reflect.String {
				continue
			}
			key := mk.String()
			if key == "default" || key == esModuleFlag {
				continue
			}
			_ = target.DefineGetter(key, func() any {
				v := src.MapIndex(reflect.ValueOf(key))
				if !v.IsValid() {
					return nil
				}
				return v.Interface()
			})
		}
	default:
	}
}
