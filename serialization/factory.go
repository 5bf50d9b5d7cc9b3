package serialization

// NewDefaultSerializerRegistry creates a registry holding the funbit and JSON
// serializers, with funbit as the default.
func NewDefaultSerializerRegistry() *SerializerRegistry {
	registry := NewSerializerRegistry()

	// Both names are distinct constants, registration cannot collide.
	_ = registry.RegisterSerializer(NewFunbitSerializer())
	_ = registry.RegisterSerializer(NewJSONSerializer())

	return registry
}

// Serialize serializes a snapshot using the specified format
func Serialize(snapshot *Snapshot, format string) ([]byte, error) {
	serializer, err := NewDefaultSerializerRegistry().GetSerializer(format)
	if err != nil {
		return nil, err
	}
	return serializer.Serialize(snapshot)
}

// Deserialize deserializes a snapshot using the specified format
func Deserialize(data []byte, format string) (*Snapshot, error) {
	serializer, err := NewDefaultSerializerRegistry().GetSerializer(format)
	if err != nil {
		return nil, err
	}
	return serializer.Deserialize(data)
}

// GetSupportedFormats returns all supported serialization formats
func GetSupportedFormats() []string {
	return NewDefaultSerializerRegistry().ListSerializers()
}
