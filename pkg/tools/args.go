package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// Tool names declared to the model.
const (
	ToolInitializeCharacter   = "initialize_character"
	ToolManageInventory       = "manage_inventory"
	ToolUpdateCurrency        = "update_currency"
	ToolCreateMapLocation     = "create_map_location"
	ToolUpdateZoneDescription = "update_zone_description"
	ToolNavigate              = "navigate"
	ToolUpsertMemory          = "upsert_memory"
)

// ArgumentError describes a tool call whose arguments could not be decoded.
// It is reported back to the model, never to the player.
type ArgumentError struct {
	Tool   string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tool, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Args is the decoded, defaulted arguments of one tool call.
// Each tool has exactly one implementation.
type Args interface {
	// Tool returns the tool name the arguments belong to.
	Tool() string
	// apply mutates next, a private copy of the snapshot. It returns the
	// result text and whether next should replace the caller's snapshot.
	apply(next *world.Snapshot) (string, bool)
}

type decodeFunc func(raw []byte) (Args, error)

var decoders = map[string]decodeFunc{
	ToolInitializeCharacter:   decodeInto[InitializeCharacterArgs],
	ToolManageInventory:       decodeInto[ManageInventoryArgs],
	ToolUpdateCurrency:        decodeInto[UpdateCurrencyArgs],
	ToolCreateMapLocation:     decodeInto[CreateMapLocationArgs],
	ToolUpdateZoneDescription: decodeInto[UpdateZoneDescriptionArgs],
	ToolNavigate:              decodeInto[NavigateArgs],
	ToolUpsertMemory:          decodeInto[UpsertMemoryArgs],
}

// ErrUnknownTool is the ArgumentError reason for a name outside the tool set.
const ErrUnknownTool = "unknown tool"

// ParseArgs decodes the raw argument text of a call to the named tool.
func ParseArgs(name, raw string) (Args, error) {
	decode, ok := decoders[name]
	if !ok {
		return nil, &ArgumentError{Tool: name, Reason: ErrUnknownTool}
	}
	args, err := decode([]byte(raw))
	if err != nil {
		return nil, &ArgumentError{Tool: name, Reason: "invalid arguments", Err: err}
	}
	return args, nil
}

func decodeInto[T any, P interface {
	*T
	Args
}](raw []byte) (Args, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return P(&v), nil
}

// flexInt accepts JSON numbers, numeric strings and null. Models are not
// consistent about quoting numbers.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = flexInt{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt{Value: int(n), Set: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexInt{}
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt{Value: int(n), Set: true}
		return nil
	}
	return fmt.Errorf("not a number: %s", string(data))
}

// Or returns the value, or def when the field was absent or null.
func (f flexInt) Or(def int) int {
	if !f.Set {
		return def
	}
	return f.Value
}

// flexBool accepts JSON booleans, "true"/"false" strings and null.
type flexBool struct {
	Value bool
	Set   bool
}

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = flexBool{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool{Value: b, Set: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not a boolean: %q", s)
		}
		*f = flexBool{Value: b, Set: true}
		return nil
	}
	return fmt.Errorf("not a boolean: %s", string(data))
}

// Or returns the value, or def when the field was absent or null.
func (f flexBool) Or(def bool) bool {
	if !f.Set {
		return def
	}
	return f.Value
}

// flexString accepts JSON strings, numbers and null. Zone IDs in
// particular sometimes arrive as bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	return fmt.Errorf("not a string: %s", string(data))
}

func (f flexString) String() string {
	return string(f)
}

// optionalList is a list of strings that remembers whether the model
// supplied an array at all. Anything other than an array is "not supplied".
type optionalList struct {
	Items []string
	Set   bool
}

func (l *optionalList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = optionalList{}
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, r := range raw {
		var s flexString
		if err := json.Unmarshal(r, &s); err != nil || s == "" {
			continue
		}
		items = append(items, s.String())
	}
	*l = optionalList{Items: items, Set: true}
	return nil
}

// lenientList decodes an array of T, treating a non-array as empty and
// skipping elements that do not decode.
type lenientList[T any] []T

func (l *lenientList[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// StartingItem is one entry of initialize_character's items list.
type StartingItem struct {
	Name        flexString `json:"name"`
	Type        flexString `json:"type"`
	Description flexString `json:"description"`
	Quantity    flexInt    `json:"quantity"`
	Equipped    flexBool   `json:"isEquipped"`
}

// InitializeCharacterArgs resets inventory and wallet wholesale.
type InitializeCharacterArgs struct {
	Items  lenientList[StartingItem] `json:"items"`
	Gold   flexInt                   `json:"gold"`
	Silver flexInt                   `json:"silver"`
	Copper flexInt                   `json:"copper"`
}

func (*InitializeCharacterArgs) Tool() string { return ToolInitializeCharacter }

// Inventory actions.
const (
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionEquip   = "equip"
	ActionUnequip = "unequip"
)

// ManageInventoryArgs adds, removes, equips or unequips one item.
type ManageInventoryArgs struct {
	Action      flexString `json:"action"`
	ItemName    flexString `json:"item_name"`
	ItemType    flexString `json:"item_type"`
	Quantity    flexInt    `json:"quantity"`
	Description flexString `json:"description"`
}

func (*ManageInventoryArgs) Tool() string { return ToolManageInventory }

// UpdateCurrencyArgs applies signed deltas to the wallet.
type UpdateCurrencyArgs struct {
	GoldDelta   flexInt `json:"gold_delta"`
	SilverDelta flexInt `json:"silver_delta"`
	CopperDelta flexInt `json:"copper_delta"`
}

func (*UpdateCurrencyArgs) Tool() string { return ToolUpdateCurrency }

// ZoneSpec is a zone as described by the model in create_map_location.
type ZoneSpec struct {
	ID          flexString   `json:"id"`
	Name        flexString   `json:"name"`
	Description flexString   `json:"description"`
	Connections optionalList `json:"connections"`
}

// CreateMapLocationArgs creates a new location or merges into a known one.
type CreateMapLocationArgs struct {
	LocationName flexString            `json:"location_name"`
	Zones        lenientList[ZoneSpec] `json:"zones"`
	StartZoneID  flexString            `json:"start_zone_id"`
}

func (*CreateMapLocationArgs) Tool() string { return ToolCreateMapLocation }

// UpdateZoneDescriptionArgs rewrites a zone's description.
// An empty ZoneID targets the current zone.
type UpdateZoneDescriptionArgs struct {
	Description flexString `json:"description"`
	ZoneID      flexString `json:"zone_id"`
}

func (*UpdateZoneDescriptionArgs) Tool() string { return ToolUpdateZoneDescription }

// NavigateArgs moves the player along a connection.
type NavigateArgs struct {
	TargetZoneID flexString `json:"target_zone_id"`
	Reason       flexString `json:"reason"`
}

func (*NavigateArgs) Tool() string { return ToolNavigate }

// UpsertMemoryArgs creates or merges a dossier entry.
type UpsertMemoryArgs struct {
	Category    flexString `json:"category"`
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	IsEnabled   flexBool   `json:"isEnabled"`
}

func (*UpsertMemoryArgs) Tool() string { return ToolUpsertMemory }
