package media

import (
	"github.com/goccy/go-json"
)

// itemFields has Item's layout without its methods.
type itemFields Item

// UnmarshalJSON decodes the known fields and keeps every member of the
// object so that MarshalJSON can reproduce it.
func (i *Item) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	var fields itemFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = Item(fields)
	i.members = members
	return nil
}

// MarshalJSON encodes the decoded members unchanged. Fields set on an item
// that was not decoded, or members the source lacked, come from the typed
// fields.
func (i Item) MarshalJSON() ([]byte, error) {
	members, err := i.Members()
	if err != nil {
		return nil, err
	}
	return json.Marshal(members)
}

// Members returns the item as a set of JSON object members. The map is a
// copy and may be modified.
func (i Item) Members() (map[string]json.RawMessage, error) {
	data, err := json.Marshal(itemFields(i))
	if err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for key, value := range i.members {
		members[key] = value
	}
	return members, nil
}

// MarshalWith encodes item as one JSON object together with the members of
// extra, which must encode as an object. Members of extra replace item
// members of the same name.
func MarshalWith(item Item, extra any) ([]byte, error) {
	members, err := item.Members()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}
	for key, value := range overlay {
		members[key] = value
	}
	return json.Marshal(members)
}
