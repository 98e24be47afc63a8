package filter

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/onyx-protocol/txfilter/errors"
)

// Errors recorded by builder operations.
var (
	ErrBadAddress    = errors.New("invalid address")
	ErrBadHex        = errors.New("invalid hex string")
	ErrBadValue      = errors.New("negative value")
	ErrInvalidAttach = errors.New("invalid attachment point")
)

// Builder constructs a Filter through chained calls. Each operation
// attaches a new node at the current insertion point; And and Or open
// a nested group and move the insertion point into it, and Exit moves
// it back out one level.
//
// Builder operations return the receiver so calls can be chained. An
// operation that fails records the first error and leaves the tree
// untouched; once an error is recorded, subsequent operations are
// no-ops. The error is available from Err and returned by Build, so a
// chain can be checked once at the end:
//
//	f, err := filter.NewBuilder().
//		And().
//		To("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D").
//		Value(big.NewInt(10000)).
//		Build()
//
// A Builder is not safe for concurrent use. Share only the finished
// Filter returned by Build.
type Builder struct {
	filter *Filter
	next   *Node   // current insertion point; nil means "attach as root"
	saved  []*Node // insertion points of enclosing groups, innermost last
	err    error
}

// NewBuilder returns a Builder for an empty filter.
func NewBuilder() *Builder {
	return &Builder{filter: new(Filter)}
}

// To attaches a condition matching the transaction's recipient
// address. The address is a 40-digit hex string, optionally
// 0x-prefixed; a malformed address records ErrBadAddress.
func (b *Builder) To(addr string) *Builder {
	return b.address(KeyTo, addr)
}

// From attaches a condition matching the transaction's sender
// address. The address is a 40-digit hex string, optionally
// 0x-prefixed; a malformed address records ErrBadAddress.
func (b *Builder) From(addr string) *Builder {
	return b.address(KeyFrom, addr)
}

func (b *Builder) address(key, addr string) *Builder {
	if b.err != nil {
		return b
	}
	if !common.IsHexAddress(addr) {
		b.err = errors.WithDetailf(ErrBadAddress, "%q is not a 20-byte hex address", addr)
		return b
	}
	a := common.HexToAddress(addr)
	b.add(condition(key, a.Bytes()))
	return b
}

// Method attaches a condition matching the method selector of the
// transaction's calldata. The selector is a hex string, optionally
// 0x-prefixed; selectors are 4 bytes by convention but any length is
// accepted. A malformed string records ErrBadHex.
func (b *Builder) Method(selector string) *Builder {
	if b.err != nil {
		return b
	}
	s := selector
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	v, err := hexutil.Decode(s)
	if err != nil {
		b.err = errors.WithDetailf(ErrBadHex, "%q: %s", selector, err)
		return b
	}
	b.add(condition(KeyMethod, v))
	return b
}

// Value attaches a condition matching the transaction's transferred
// value, encoded as minimal big-endian bytes: no leading zero bytes,
// and zero encodes as the empty byte sequence. A nil v is treated as
// zero; a negative v records ErrBadValue.
func (b *Builder) Value(v *big.Int) *Builder {
	if b.err != nil {
		return b
	}
	if v != nil && v.Sign() < 0 {
		b.err = errors.WithDetailf(ErrBadValue, "value %s is negative", v)
		return b
	}
	var enc []byte
	if v != nil {
		enc = v.Bytes()
	}
	b.add(condition(KeyValue, enc))
	return b
}

// And opens an AND group: it attaches an AND node at the current
// insertion point and moves the insertion point into it. Subsequent
// operations attach beneath the group until Exit.
func (b *Builder) And() *Builder {
	return b.group(AND)
}

// Or opens an OR group: it attaches an OR node at the current
// insertion point and moves the insertion point into it. Subsequent
// operations attach beneath the group until Exit.
func (b *Builder) Or() *Builder {
	return b.group(OR)
}

func (b *Builder) group(op Operator) *Builder {
	if b.err != nil {
		return b
	}
	n := operator(op)
	if !b.add(n) {
		return b
	}
	b.saved = append(b.saved, b.next)
	b.next = n
	return b
}

// Exit moves the insertion point back to where it was before the
// innermost open group was opened. Groups nest to arbitrary depth;
// each Exit closes one level. Exit with no open group is a no-op.
func (b *Builder) Exit() *Builder {
	if b.err != nil {
		return b
	}
	if n := len(b.saved); n > 0 {
		b.next = b.saved[n-1]
		b.saved = b.saved[:n-1]
	}
	return b
}

// add attaches n at the current insertion point and reports whether
// it succeeded. The first node of an empty tree becomes the root.
// When a node must attach at root level but a root already exists —
// a sibling for a condition root, or a sibling for the outermost
// group after Exit — the existing root is wrapped in an implicit AND
// group and the node attaches there, so a chain of root-level calls
// reads as the conjunction of its parts.
func (b *Builder) add(n *Node) bool {
	if b.filter.Root == nil {
		b.filter.Root = n
		if n.Operand != nil {
			b.next = n
		}
		return true
	}
	if b.next == nil || b.next.Operand != nil {
		wrap := operator(AND)
		wrap.Nodes = append(wrap.Nodes, b.filter.Root)
		b.filter.Root = wrap
		b.next = wrap
	}
	if err := b.filter.attach(b.next, n); err != nil {
		b.err = err
		return false
	}
	return true
}

// Err returns the first error recorded by a builder operation, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build returns an independent deep copy of the filter constructed so
// far, along with the first recorded construction error. The builder
// remains usable; further operations do not affect previously built
// copies.
func (b *Builder) Build() (*Filter, error) {
	return &Filter{Root: b.filter.Root.clone()}, b.err
}

// Encode serializes the current tree in compact wire form. Unlike
// Build, it does not report construction errors; the tree is always
// well formed because failed operations never mutate it.
func (b *Builder) Encode() ([]byte, error) {
	return b.filter.Encode()
}

// EncodePretty serializes the current tree in indented form.
func (b *Builder) EncodePretty() (string, error) {
	return b.filter.EncodePretty()
}
