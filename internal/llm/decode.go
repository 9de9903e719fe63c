package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Item is one marker returned by an extraction provider.
type Item struct {
	Name           string   `json:"name"`
	Value          *float64 `json:"value"`
	ValueText      string   `json:"value_text"`
	Unit           string   `json:"unit"`
	ReferenceRange string   `json:"reference_range"`
	Flag           string   `json:"flag"`
}

// Decoded is the outcome of DecodeItems.
type Decoded struct {
	Items []Item
	// Invalid counts array elements rejected by the item schema.
	Invalid int
}

// DecodeItems reads the marker array from a provider reply. The array may be
// the whole reply, embedded in prose or a code fence, or held under a
// "markers" key of an object.
func DecodeItems(content string) (*Decoded, error) {
	raw, err := extractArray(content)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decoding item array: %w", err)
	}

	out := &Decoded{Items: make([]Item, 0, len(elems))}
	for _, elem := range elems {
		var generic any
		dec := json.NewDecoder(bytes.NewReader(elem))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil || ValidateItem(generic) != nil {
			out.Invalid++
			continue
		}
		var item Item
		if err := json.Unmarshal(elem, &item); err != nil {
			out.Invalid++
			continue
		}
		item.Name = strings.TrimSpace(item.Name)
		if item.ValueText == "" && item.Value != nil {
			item.ValueText = strconv.FormatFloat(*item.Value, 'f', -1, 64)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func extractArray(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "[") && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	if strings.HasPrefix(s, "{") {
		var wrapped struct {
			Markers json.RawMessage `json:"markers"`
		}
		if err := json.Unmarshal([]byte(s), &wrapped); err == nil && len(wrapped.Markers) > 0 {
			return wrapped.Markers, nil
		}
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, ErrNoItems
	}
	candidate := []byte(s[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: embedded array is not valid JSON", ErrNoItems)
	}
	return candidate, nil
}
