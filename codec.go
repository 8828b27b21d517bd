package mimeo

// Codec provides content-type aware marshaling for flattened graphs.
// Implementations live in the json, yaml, and msgpack submodules; Flatten
// output is plain data, so any Codec can encode it without knowing the
// document node types.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
