package evaluator

import "context"

// Probe is an evaluator that executes nothing. The CLI uses it to exercise
// the transport and cache pipeline end to end without a host evaluation
// engine: inline bodies are accepted and discarded, externalized modules
// echo their target reference.
type Probe struct{}

// RunInlinedModule accepts the code without executing it.
func (Probe) RunInlinedModule(ctx context.Context, modCtx *Context, code, id string) error {
	return nil
}

// RunExternalModule echoes the delegate target.
func (Probe) RunExternalModule(ctx context.Context, target string) (any, error) {
	return map[string]any{"externalized": target}, nil
}
