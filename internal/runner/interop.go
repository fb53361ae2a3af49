package runner

import (
	"fmt"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/record"
	"github.com/vk/modrunnergo/internal/transport"
)

// processImport adjusts the export shape on the normal return path of the
// scheduler. Builtin and untyped results pass through untouched; commonjs
// modules are viewed through a per-record interop namespace ("default"
// plus live copies of every named binding) and validated against the
// import site's requested names. The raw path inside the execution adapter
// never applies this.
func (r *Runner) processImport(rec *record.Record, exports any, im *evaluator.ImportMetadata) (any, error) {
	fr := rec.Meta()
	if fr == nil {
		return exports, nil
	}
	switch fr.Type {
	case transport.TypeModule:
		return exports, nil
	case transport.TypeCommonJS:
		ns := rec.InteropNamespace(exports)
		if im != nil {
			for _, name := range im.ImportedNames {
				if name == "default" {
					continue
				}
				if !ns.Has(name) {
					return nil, fmt.Errorf("module %q does not provide an export named %q", rec.ID(), name)
				}
			}
		}
		return ns, nil
	default:
		return exports, nil
	}
}
