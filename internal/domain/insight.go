package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is a raw JSON value whose type the ads platform does not guarantee.
// Numbers arrive as strings, fields go missing or come back null, so the value
// is kept verbatim and coerced later by the aggregation layer.
type Field []byte

// FieldOf encodes v as a Field. Unencodable values produce an empty Field.
func FieldOf(v any) Field {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return Field(b)
}

func (f *Field) UnmarshalJSON(b []byte) error {
	*f = append((*f)[:0], b...)
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	if len(f) == 0 {
		return []byte("null"), nil
	}
	return f, nil
}

// IsNull reports whether the field is missing or an explicit JSON null.
func (f Field) IsNull() bool {
	b := bytes.TrimSpace(f)
	return len(b) == 0 || string(b) == "null"
}

// Action is one entry of the actions / action_values lists.
type Action struct {
	ActionType Field `json:"action_type,omitempty"`
	Value      Field `json:"value,omitempty"`
}

// ActionList decodes leniently: anything that is not an array becomes an
// empty list and entries that are not objects are dropped.
type ActionList []Action

func (l *ActionList) UnmarshalJSON(b []byte) error {
	*l = nil
	if !isJSONArray(b) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}

	for _, item := range items {
		if !isJSONObject(item) {
			continue
		}
		var action Action
		if err := json.Unmarshal(item, &action); err != nil {
			continue
		}
		*l = append(*l, action)
	}

	return nil
}

// RawInsight is one campaign/day row as returned by the insights endpoint.
type RawInsight struct {
	CampaignID   Field      `json:"campaign_id,omitempty"`
	CampaignName Field      `json:"campaign_name,omitempty"`
	Objective    Field      `json:"objective,omitempty"`
	DateStart    Field      `json:"date_start,omitempty"`
	DateStop     Field      `json:"date_stop,omitempty"`
	Spend        Field      `json:"spend,omitempty"`
	Clicks       Field      `json:"clicks,omitempty"`
	Impressions  Field      `json:"impressions,omitempty"`
	Reach        Field      `json:"reach,omitempty"`
	Actions      ActionList `json:"actions,omitempty"`
	ActionValues ActionList `json:"action_values,omitempty"`
}

// UnmarshalJSON turns any non-object value into an empty record.
func (r *RawInsight) UnmarshalJSON(b []byte) error {
	*r = RawInsight{}
	if !isJSONObject(b) {
		return nil
	}

	type plain RawInsight
	return json.Unmarshal(b, (*plain)(r))
}

var errPayloadShape = errors.New("insights payload must be an array or an object with a data array")

// ParseInsightsPayload accepts either {"data": [...]} or a bare array of records.
func ParseInsightsPayload(payload []byte) ([]RawInsight, error) {
	trimmed := bytes.TrimSpace(payload)

	if isJSONObject(trimmed) {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse insights payload: %w", err)
		}
		trimmed = bytes.TrimSpace(envelope.Data)
	}

	if !isJSONArray(trimmed) {
		return nil, errPayloadShape
	}

	records := []RawInsight{}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to parse insights payload: %w", err)
	}

	return records, nil
}

func isJSONObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

func isJSONArray(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}
