// Package filter constructs boolean filter expressions over
// transaction attributes and serializes them to the JSON wire format
// accepted by the transaction filtering API.
//
// A filter is an n-ary tree. Leaves are conditions: a key naming the
// transaction attribute ("to", "from", "method", "value") paired with
// the attribute's raw bytes. Interior nodes combine their children
// with AND or OR. Trees are built with a Builder and serialized with
// Encode; the filtering API evaluates the serialized form against
// transactions on its side.
package filter

import (
	"encoding/json"

	"github.com/onyx-protocol/txfilter/errors"
)

// ErrBadFilter is returned from Decode when it encounters
// a malformed or structurally invalid filter document.
var ErrBadFilter = errors.New("invalid filter document")

// Operator identifies how an operator node combines its children.
// The integer values are fixed by the wire format.
type Operator int

const (
	AND Operator = 1
	OR  Operator = 2
)

func (op Operator) String() string {
	switch op {
	case AND:
		return "AND"
	case OR:
		return "OR"
	}
	return "UNKNOWN"
}

// Condition keys understood by the filtering API.
const (
	KeyTo     = "to"     // recipient address, 20 bytes
	KeyFrom   = "from"   // sender address, 20 bytes
	KeyMethod = "method" // method selector, 4 bytes by convention
	KeyValue  = "value"  // transferred value, minimal big-endian bytes
)

// KV is the operand of a condition node: a single attribute test.
// Value holds the attribute's raw bytes and is serialized as a
// standard-alphabet base64 string.
type KV struct {
	Key   string `json:"Key"`
	Value []byte `json:"Value"`
}

// Node is one node of a filter tree. Exactly one of Operand and
// Operator is set: a condition leaf carries an Operand and no
// children; an operator node carries an Operator and an ordered
// list of children. Children are only ever appended, never
// reordered, and their order is significant: the filtering API
// evaluates operands in serialization order.
type Node struct {
	Operand  *KV       `json:"Operand"`
	Operator *Operator `json:"Operator"`
	Nodes    []*Node   `json:"Nodes"`
}

// Filter is a filter expression tree. Root is nil until the first
// builder operation. All mutation happens through a Builder.
type Filter struct {
	Root *Node `json:"Root"`
}

// condition constructs a condition leaf. A nil value is normalized
// to empty so that it serializes as "" rather than null.
func condition(key string, value []byte) *Node {
	if value == nil {
		value = []byte{}
	}
	return &Node{Operand: &KV{Key: key, Value: value}}
}

// operator constructs an empty operator node.
func operator(op Operator) *Node {
	return &Node{Operator: &op}
}

// attach appends child under parent, or sets child as the root when
// parent is nil and the tree is empty. Attaching under a condition
// leaf fails; leaves never have children. The builder maintains that
// invariant itself, so this check guards only direct manipulation of
// decoded trees.
func (f *Filter) attach(parent, child *Node) error {
	if parent == nil {
		if f.Root != nil {
			return errors.WithDetail(ErrInvalidAttach, "tree already has a root")
		}
		f.Root = child
		return nil
	}
	if parent.Operand != nil {
		return errors.WithDetail(ErrInvalidAttach, "conditions cannot have children")
	}
	parent.Nodes = append(parent.Nodes, child)
	return nil
}

// Encode serializes the filter to its compact wire form.
// It is deterministic given the tree's structure and node order.
func (f *Filter) Encode() ([]byte, error) {
	b, err := json.Marshal(f)
	return b, errors.Wrap(err, "marshaling filter")
}

// EncodePretty serializes the filter in indented, human-readable form.
func (f *Filter) EncodePretty() (string, error) {
	b, err := json.MarshalIndent(f, "", "  ")
	return string(b), errors.Wrap(err, "marshaling filter")
}

// Decode parses a wire-format filter document produced by Encode and
// validates its structure. It returns ErrBadFilter (with detail) for
// malformed JSON, unknown condition keys, nodes that are both
// condition and operator, conditions with children, and operator
// nodes with unknown operator codes.
func Decode(data []byte) (*Filter, error) {
	f := new(Filter)
	err := json.Unmarshal(data, f)
	if err != nil {
		return nil, errors.WithDetail(ErrBadFilter, err.Error())
	}
	if f.Root != nil {
		if err := validate(f.Root); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func validate(n *Node) error {
	switch {
	case n.Operand != nil && n.Operator != nil:
		return errors.WithDetail(ErrBadFilter, "node is both condition and operator")
	case n.Operand != nil:
		if len(n.Nodes) > 0 {
			return errors.WithDetail(ErrBadFilter, "condition node has children")
		}
		switch n.Operand.Key {
		case KeyTo, KeyFrom, KeyMethod, KeyValue:
		default:
			return errors.WithDetailf(ErrBadFilter, "unknown condition key %q", n.Operand.Key)
		}
	case n.Operator != nil:
		if *n.Operator != AND && *n.Operator != OR {
			return errors.WithDetailf(ErrBadFilter, "unknown operator code %d", *n.Operator)
		}
		for _, child := range n.Nodes {
			if err := validate(child); err != nil {
				return err
			}
		}
	default:
		return errors.WithDetail(ErrBadFilter, "node is neither condition nor operator")
	}
	return nil
}

// clone returns a deep copy of the subtree rooted at n.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := new(Node)
	if n.Operand != nil {
		v := make([]byte, len(n.Operand.Value))
		copy(v, n.Operand.Value)
		c.Operand = &KV{Key: n.Operand.Key, Value: v}
	}
	if n.Operator != nil {
		op := *n.Operator
		c.Operator = &op
	}
	for _, child := range n.Nodes {
		c.Nodes = append(c.Nodes, child.clone())
	}
	return c
}
