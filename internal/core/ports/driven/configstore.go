package driven

// ConfigStore holds flat settings keyed in dot notation ("rag.min_similarity")
// mirroring TOML tables. Typed getters return the zero value for keys that
// are missing or hold another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat widens integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set and Delete persist immediately.
	Set(key string, value any) error
	Delete(key string) error

	// Load rereads the backing storage, discarding unsaved state.
	Load() error

	// Path is the backing file, or empty for in-memory stores.
	Path() string
}
