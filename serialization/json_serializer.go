package serialization

import (
	"encoding/json"
)

const FormatJSON = "json"

// JSONSerializer implements SnapshotSerializer for JSON format
type JSONSerializer struct {
	version string
	pretty  bool
}

// NewJSONSerializer creates a new JSON serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{
		version: "1.0.0",
		pretty:  true,
	}
}

// Serialize converts a snapshot to JSON bytes
func (js *JSONSerializer) Serialize(snapshot *Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, NewSerializationError(FormatJSON, "serialize", "snapshot is nil")
	}

	var (
		data []byte
		err  error
	)
	if js.pretty {
		data, err = json.MarshalIndent(snapshot, "", "  ")
	} else {
		data, err = json.Marshal(snapshot)
	}
	if err != nil {
		return nil, NewSerializationError(FormatJSON, "serialize", "marshal failed").Wrap(err)
	}
	return data, nil
}

// Deserialize converts JSON bytes back to a snapshot
func (js *JSONSerializer) Deserialize(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, NewSerializationError(FormatJSON, "deserialize", "data is empty")
	}

	var result Snapshot
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, NewSerializationError(FormatJSON, "deserialize", "unmarshal failed").Wrap(err)
	}
	return &result, nil
}

// GetName returns the name of the serializer
func (js *JSONSerializer) GetName() string {
	return FormatJSON
}

// GetVersion returns the version of the serializer
func (js *JSONSerializer) GetVersion() string {
	return js.version
}
