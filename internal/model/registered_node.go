package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Keys of a node row in nodes.json
const (
	nodeKeyRow      = "Row"
	nodeKeyIP       = "IPAddress"
	nodeKeyNQN      = "NQN"
	nodeKeyAlias    = "Alias"
	nodeKeyDevType  = "DevType"
	nodeKeyZone     = "Create a Zone"
	nodeKeyActivate = "Activate"
)

// RegisteredNode is one row of the device registry inventory (nodes.json).
// Keys the console does not know about are kept in Extra and written back unchanged.
type RegisteredNode struct {
	Row       int
	IPAddress string
	NQN       string
	Alias     string
	DevType   string
	Zone      string
	Activate  bool
	Extra     map[string]json.RawMessage
}

// NodeInventory is the content of nodes.json.
type NodeInventory struct {
	Nodes []RegisteredNode `json:"nodes"`
}

// NewNodeInventory returns an empty inventory
func NewNodeInventory() *NodeInventory {
	return &NodeInventory{Nodes: []RegisteredNode{}}
}

// Clone returns a deep copy of the inventory
func (inv *NodeInventory) Clone() *NodeInventory {
	c := &NodeInventory{Nodes: make([]RegisteredNode, len(inv.Nodes))}
	for i, n := range inv.Nodes {
		c.Nodes[i] = n
		if n.Extra != nil {
			c.Nodes[i].Extra = make(map[string]json.RawMessage, len(n.Extra))
			for k, v := range n.Extra {
				c.Nodes[i].Extra[k] = v
			}
		}
	}
	return c
}

// MarshalJSON writes the node with the nodes.json key names
func (n RegisteredNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(n.Extra)+7)
	for k, v := range n.Extra {
		out[k] = v
	}
	out[nodeKeyRow] = n.Row
	out[nodeKeyIP] = n.IPAddress
	out[nodeKeyNQN] = n.NQN
	out[nodeKeyAlias] = n.Alias
	out[nodeKeyDevType] = n.DevType
	out[nodeKeyZone] = n.Zone
	out[nodeKeyActivate] = n.Activate
	return json.Marshal(out)
}

// UnmarshalJSON reads a node row. The inventory is produced by table editors, so
// Row may be a number or a numeric string and Activate may be a bool, a string or empty.
func (n *RegisteredNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = RegisteredNode{}
	for key, value := range raw {
		var err error
		switch key {
		case nodeKeyRow:
			n.Row, err = decodeRow(value)
		case nodeKeyIP:
			n.IPAddress, err = decodeString(value)
		case nodeKeyNQN:
			n.NQN, err = decodeString(value)
		case nodeKeyAlias:
			n.Alias, err = decodeString(value)
		case nodeKeyDevType:
			n.DevType, err = decodeString(value)
		case nodeKeyZone:
			n.Zone, err = decodeString(value)
		case nodeKeyActivate:
			n.Activate, err = decodeFlag(value)
		default:
			if n.Extra == nil {
				n.Extra = make(map[string]json.RawMessage)
			}
			n.Extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("%w: node field %q: %v", ErrInvalidDocument, key, err)
		}
	}
	return nil
}

func decodeString(value json.RawMessage) (string, error) {
	if string(value) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func decodeRow(value json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return int(f), nil
	}
	s, err := decodeString(value)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func decodeFlag(value json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return b, nil
	}
	s, err := decodeString(value)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	}
	return false, fmt.Errorf("unrecognised flag %q", s)
}
