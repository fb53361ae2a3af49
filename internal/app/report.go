package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/modrunnergo/internal/record"
)

// exportKeys lists the export names of whatever value an import produced.
// Namespaces and maps enumerate their keys; anything else is opaque.
func exportKeys(exports any) []string {
	switch v := exports.(type) {
	case nil:
		return nil
	case *record.Namespace:
		return v.Keys()
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	default:
		return nil
	}
}

// report prints a human-readable summary of an imported module to the
// App's output writer.
func (a *App) report(entry string, exports any) {
	keys := exportKeys(exports)

	fmt.Fprintf(a.outW, "module: %s\n", entry)
	if len(keys) == 0 {
		fmt.Fprintf(a.outW, "exports: (none enumerable: %T)\n", exports)
		return
	}
	fmt.Fprintf(a.outW, "exports: %s\n", strings.Join(keys, ", "))
}
