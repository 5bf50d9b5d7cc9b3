package serialization

import (
	"errors"
	"fmt"
	"sort"

	"jsctx/pkg/lexer"
)

// Snapshot is the persisted form of one unit's token stream, both channels included
type Snapshot struct {
	Source string        `json:"source"`
	Tokens []lexer.Token `json:"tokens"`
}

// SnapshotSerializer defines the interface for serializing and deserializing snapshots
type SnapshotSerializer interface {
	// Serialize converts a snapshot to bytes
	Serialize(snapshot *Snapshot) ([]byte, error)

	// Deserialize converts bytes back to a snapshot
	Deserialize(data []byte) (*Snapshot, error)

	// GetName returns the name of the serializer
	GetName() string

	// GetVersion returns the version of the serializer
	GetVersion() string
}

// SerializationError represents an error that occurred during serialization
type SerializationError struct {
	Operation string
	Message   string
	Format    string
	Context   map[string]interface{}
	Cause     error
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s serialization error] %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s serialization error] %s", e.Format, e.Message)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a new serialization error
func NewSerializationError(format, operation, message string) *SerializationError {
	return &SerializationError{
		Format:    format,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *SerializationError) WithContext(key string, value interface{}) *SerializationError {
	e.Context[key] = value
	return e
}

// Wrap records the underlying error
func (e *SerializationError) Wrap(err error) *SerializationError {
	e.Cause = err
	return e
}

// SerializerRegistry manages multiple serializers
type SerializerRegistry struct {
	serializers       map[string]SnapshotSerializer
	defaultSerializer string
}

// NewSerializerRegistry creates an empty registry defaulting to the funbit format
func NewSerializerRegistry() *SerializerRegistry {
	return &SerializerRegistry{
		serializers:       make(map[string]SnapshotSerializer),
		defaultSerializer: FormatFunbit,
	}
}

// RegisterSerializer registers a serializer
func (sr *SerializerRegistry) RegisterSerializer(serializer SnapshotSerializer) error {
	name := serializer.GetName()
	if _, exists := sr.serializers[name]; exists {
		return fmt.Errorf("serializer '%s' is already registered", name)
	}

	sr.serializers[name] = serializer
	return nil
}

// GetSerializer returns a serializer by name
func (sr *SerializerRegistry) GetSerializer(name string) (SnapshotSerializer, error) {
	serializer, exists := sr.serializers[name]
	if !exists {
		return nil, fmt.Errorf("serializer '%s' not found", name)
	}
	return serializer, nil
}

// GetDefaultSerializer returns the default serializer
func (sr *SerializerRegistry) GetDefaultSerializer() (SnapshotSerializer, error) {
	if sr.defaultSerializer == "" {
		return nil, errors.New("no default serializer configured")
	}
	return sr.GetSerializer(sr.defaultSerializer)
}

// SetDefaultSerializer sets the default serializer
func (sr *SerializerRegistry) SetDefaultSerializer(name string) error {
	if _, exists := sr.serializers[name]; !exists {
		return fmt.Errorf("serializer '%s' not found", name)
	}

	sr.defaultSerializer = name
	return nil
}

// ListSerializers returns the names of all registered serializers, sorted
func (sr *SerializerRegistry) ListSerializers() []string {
	names := make([]string, 0, len(sr.serializers))
	for name := range sr.serializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConvertFormat converts serialized data from one format to another
func (sr *SerializerRegistry) ConvertFormat(data []byte, fromFormat, toFormat string) ([]byte, error) {
	fromSerializer, err := sr.GetSerializer(fromFormat)
	if err != nil {
		return nil, err
	}

	snapshot, err := fromSerializer.Deserialize(data)
	if err != nil {
		return nil, err
	}

	toSerializer, err := sr.GetSerializer(toFormat)
	if err != nil {
		return nil, err
	}

	return toSerializer.Serialize(snapshot)
}

// IsFormatSupported checks if a format is supported
func (sr *SerializerRegistry) IsFormatSupported(format string) bool {
	_, exists := sr.serializers[format]
	return exists
}
