package dahua

import "strings"

// KV is a parsed text response: vendor keys in arrival order plus the raw
// body. Keys are kept verbatim, including table./status. prefixes — the
// gateway is a transparent relay for vendor config names.
type KV struct {
	Keys   []string
	Values map[string]string
	Raw    string
}

// ParseKV parses the vendor's newline-delimited key=value format. Each line
// splits on the first '='; lines without one (blank lines, bare "OK") are
// skipped rather than fatal.
func ParseKV(text string) *KV {
	kv := &KV{Values: map[string]string{}, Raw: text}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if _, seen := kv.Values[key]; !seen {
			kv.Keys = append(kv.Keys, key)
		}
		kv.Values[key] = value
	}
	return kv
}

// Get returns the value for a key, or "".
func (kv *KV) Get(key string) string {
	return kv.Values[key]
}

// Len reports the number of parsed keys.
func (kv *KV) Len() int { return len(kv.Keys) }

// Map renders the parsed fields as a JSON-friendly payload.
func (kv *KV) Map() map[string]any {
	out := make(map[string]any, len(kv.Keys))
	for _, k := range kv.Keys {
		out[k] = kv.Values[k]
	}
	return out
}
