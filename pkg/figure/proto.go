package figure

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts the figure into a google.protobuf.Struct.
func (f *Figure) ToStruct() (*structpb.Struct, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode figure: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode figure: %w", err)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to convert figure: %w", err)
	}

	return s, nil
}

// MarshalProto returns the wire encoding of ToStruct.
func (f *Figure) MarshalProto() ([]byte, error) {
	s, err := f.ToStruct()
	if err != nil {
		return nil, err
	}

	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}
