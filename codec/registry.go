package codec

import "sync"

// Registry holds the available codecs in registration order. A codec is
// found by either its name or its MIME type; registering a codec that
// collides with an existing one on either key replaces it.
type Registry struct {
	mu     sync.RWMutex
	codecs []Codec
}

var defaultRegistry Registry

// Register adds a codec to the default registry
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or MIME type from the default registry
func Get(nameOrMIME string) (Codec, error) {
	return defaultRegistry.Get(nameOrMIME)
}

// List returns the codecs in the default registry
func List() []Codec {
	return defaultRegistry.List()
}

// Register adds a codec, replacing any codec sharing its name or MIME type
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.codecs {
		if existing.Name() == codec.Name() || existing.MIME() == codec.MIME() {
			r.codecs[i] = codec
			return
		}
	}
	r.codecs = append(r.codecs, codec)
}

// Get retrieves a codec by name or MIME type
func (r *Registry) Get(nameOrMIME string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, codec := range r.codecs {
		if codec.Name() == nameOrMIME || codec.MIME() == nameOrMIME {
			return codec, nil
		}
	}
	return nil, ErrCodecNotFound
}

// List returns all registered codecs in registration order
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Codec, len(r.codecs))
	copy(out, r.codecs)
	return out
}
