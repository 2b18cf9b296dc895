package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// FieldDef describes one custom field in a collection's schema. Order in the
// schema array is significant and must survive cloning byte-for-byte.
type FieldDef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DecodeAchievements parses the user's stored achievement-id array.
// A null or empty column decodes to an empty slice.
func DecodeAchievements(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NonEmptyJSONArray reports whether raw holds a JSON array with at least one
// element.
func NonEmptyJSONArray(raw datatypes.JSON) bool {
	if len(raw) == 0 {
		return false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return false
	}
	return len(arr) > 0
}

func EncodeAchievements(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
