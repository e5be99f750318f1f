package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts any JSON-marshallable value into a protobuf Struct.
func ToStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %T: %w", v, err)
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("could not convert %T to struct: %w", v, err)
	}

	return s, nil
}

// FromStruct fills v from a protobuf Struct, the inverse of ToStruct.
func FromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		s = &structpb.Struct{}
	}

	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not marshal struct: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("could not unmarshal struct into %T: %w", v, err)
	}

	return nil
}

// MarshalIndent renders a Struct as indented JSON for the CLI.
func MarshalIndent(s *structpb.Struct) (string, error) {
	raw, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
