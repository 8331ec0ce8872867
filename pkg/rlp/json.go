package rlp

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MarshalJSON renders a String as a 0x-prefixed hex string.
func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(s))
}

// MarshalJSON renders a List as a JSON array. An empty list is [] rather
// than null.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(l))
	for i, child := range l {
		b, err := json.Marshal(normalize(child))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return json.Marshal(out)
}

// ParseJSON builds an item from its JSON form: hex strings ("0x..") become
// Strings, arrays become Lists.
func ParseJSON(data []byte) (Item, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rlp: invalid JSON item: %w", err)
	}
	return fromJSONValue(raw)
}

func fromJSONValue(v interface{}) (Item, error) {
	switch val := v.(type) {
	case string:
		b, err := hexutil.Decode(val)
		if err != nil {
			return nil, fmt.Errorf("rlp: invalid hex string %q: %w", val, err)
		}
		return String(b), nil
	case []interface{}:
		list := make(List, 0, len(val))
		for _, child := range val {
			item, err := fromJSONValue(child)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("rlp: unsupported JSON value of type %T", v)
	}
}
