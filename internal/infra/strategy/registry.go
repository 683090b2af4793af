package strategy

import "conduit/internal/domain"

// Entry binds a real integration to a server identity. CredentialKey names
// the config key whose resolved value must be present for the real path;
// when it is missing, Guidance tells the operator how to enable it.
type Entry struct {
	Strategy      domain.Strategy
	CredentialKey string
	Guidance      string
}

// Registry is the extension seam of the bridge: one entry per identity with
// a real integration. Adding a new identity means registering a new
// (discover, execute) pair here and nothing else.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Register(identity string, entry Entry) {
	r.entries[identity] = entry
}

func (r *Registry) Lookup(identity string) (Entry, bool) {
	entry, ok := r.entries[identity]
	return entry, ok
}

func (r *Registry) Has(identity string) bool {
	_, ok := r.entries[identity]
	return ok
}

// Requirement reports whether an identity needs a credential for its real
// path, and the guidance to attach when it is missing.
func (r *Registry) Requirement(identity string) (credentialKey, guidance string, required bool) {
	entry, ok := r.entries[identity]
	if !ok || entry.CredentialKey == "" {
		return "", "", false
	}
	return entry.CredentialKey, entry.Guidance, true
}
