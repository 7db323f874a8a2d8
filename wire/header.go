package wire

import "strings"

// headerEntry is one name/value pair as it appears on the wire.
type headerEntry struct {
	Name  string
	Value string
}

// HeaderMap is an ordered multimap from header name to value: lookups are
// case-insensitive, iteration and serialization preserve insertion order,
// and a name may repeat (spec §3). It is the in-memory counterpart of the
// teacher's map-backed Headers type (application/http/semantic/header.go)
// adapted to the spec's "ordered multimap" requirement, which a Go map
// cannot satisfy on its own.
type HeaderMap struct {
	entries []headerEntry
	// index maps the lowercased name to the indices of entries that carry
	// it, in insertion order. Add keeps it current and Del rebuilds it, so
	// Get/Contains never rescan entries.
	index map[string][]int
}

// NewHeaderMap returns an empty HeaderMap ready for use.
func NewHeaderMap() *HeaderMap {
	return &HeaderMap{index: make(map[string][]int)}
}

// Add appends a name/value pair, preserving any existing entries for the
// same name.
func (h *HeaderMap) Add(name, value string) {
	if h.index == nil {
		h.index = make(map[string][]int)
	}
	key := strings.ToLower(name)
	h.index[key] = append(h.index[key], len(h.entries))
	h.entries = append(h.entries, headerEntry{Name: name, Value: value})
}

// Set replaces all existing values for name with a single value.
func (h *HeaderMap) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Del removes every entry for name.
func (h *HeaderMap) Del(name string) {
	key := strings.ToLower(name)
	idxs, ok := h.index[key]
	if !ok {
		return
	}
	removed := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		removed[i] = true
	}
	kept := h.entries[:0]
	for i, e := range h.entries {
		if removed[i] {
			continue
		}
		kept = append(kept, e)
	}
	h.entries = kept
	delete(h.index, key)
	h.reindex()
}

func (h *HeaderMap) reindex() {
	h.index = make(map[string][]int, len(h.entries))
	for i, e := range h.entries {
		key := strings.ToLower(e.Name)
		h.index[key] = append(h.index[key], i)
	}
}

// Contains reports whether any entry has the given name.
func (h *HeaderMap) Contains(name string) bool {
	_, ok := h.index[strings.ToLower(name)]
	return ok
}

// Get returns the first value for name.
func (h *HeaderMap) Get(name string) (string, bool) {
	idxs, ok := h.index[strings.ToLower(name)]
	if !ok || len(idxs) == 0 {
		return "", false
	}
	return h.entries[idxs[0]].Value, true
}

// Values returns every value for name, in insertion order.
func (h *HeaderMap) Values(name string) []string {
	idxs, ok := h.index[strings.ToLower(name)]
	if !ok {
		return nil
	}
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = h.entries[idx].Value
	}
	return out
}

// Entries returns every name/value pair in insertion order. The returned
// slice is a copy; changing it does not affect the HeaderMap.
func (h *HeaderMap) Entries() []struct{ Name, Value string } {
	out := make([]struct{ Name, Value string }, len(h.entries))
	for i, e := range h.entries {
		out[i] = struct{ Name, Value string }{e.Name, e.Value}
	}
	return out
}

// Len reports the number of entries.
func (h *HeaderMap) Len() int { return len(h.entries) }

// Serialize appends "<name>: <value>\r\n" for each entry, in insertion
// order. No header folding is performed (spec §3).
func (h *HeaderMap) Serialize(buf *strings.Builder) {
	for _, e := range h.entries {
		buf.WriteString(e.Name)
		buf.WriteString(": ")
		buf.WriteString(e.Value)
		buf.WriteString("\r\n")
	}
}
