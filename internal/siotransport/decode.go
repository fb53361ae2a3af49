package siotransport

import (
	"fmt"

	"github.com/vk/modrunnergo/internal/hotreload"
	"github.com/vk/modrunnergo/internal/transport"
)

// decodeFetchResult maps a wire payload onto the FetchResult tagged union.
// The discriminator is structural, matching the server protocol: a "cache"
// flag, an "externalize" target, or an inline "code" body.
func decodeFetchResult(payload map[string]any) (transport.FetchResult, error) {
	if b, _ := payload["cache"].(bool); b {
		return transport.FetchResult{Kind: transport.KindCache}, nil
	}
	if target, ok := payload["externalize"].(string); ok {
		return transport.FetchResult{
			Kind:        transport.KindExternalize,
			Externalize: target,
			Type:        moduleType(payload),
			Invalidate:  boolField(payload, "invalidate"),
		}, nil
	}
	if code, ok := payload["code"].(string); ok {
		file, _ := payload["file"].(string)
		return transport.FetchResult{
			Kind:       transport.KindInline,
			Code:       code,
			File:       file,
			Type:       moduleType(payload),
			Invalidate: boolField(payload, "invalidate"),
		}, nil
	}
	return transport.FetchResult{}, fmt.Errorf("siotransport: fetch result carries neither cache, externalize, nor code")
}

func decodeUpdate(payload map[string]any) hotreload.Update {
	u := hotreload.Update{}
	u.Type, _ = payload["type"].(string)
	u.Path, _ = payload["path"].(string)
	if ts, ok := numberField(payload, "timestamp"); ok {
		u.Timestamp = int64(ts)
	}
	return u
}

func moduleType(payload map[string]any) transport.ModuleType {
	t, _ := payload["type"].(string)
	switch transport.ModuleType(t) {
	case transport.TypeCommonJS:
		return transport.TypeCommonJS
	case transport.TypeBuiltin:
		return transport.TypeBuiltin
	default:
		return transport.TypeModule
	}
}

func boolField(payload map[string]any, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

// numberField tolerates the numeric types JSON decoding can produce.
func numberField(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstMap(data []any) (map[string]any, bool) {
	if len(data) == 0 {
		return nil, false
	}
	m, ok := data[0].(map[string]any)
	return m, ok
}
