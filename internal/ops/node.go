package ops

import "github.com/born-ml/zeroout/internal/tensor"

// Node is one operator invocation site in a graph: the operator it runs and
// the attribute values configured for it. Nodes are treated as immutable
// once executed; the Executor caches kernels per node.
type Node struct {
	Name       string      // Node name (optional)
	OpType     string      // Operator name (e.g., "ZeroOut")
	Attributes []Attribute // Attribute values; missing ones take the op default
}

// Attribute represents a node attribute value.
type Attribute struct {
	Name string
	Kind AttrKind
	I    int64           // INT value
	Type tensor.DataType // TYPE value
}

// IntAttr builds an integer attribute.
func IntAttr(name string, v int64) Attribute {
	return Attribute{Name: name, Kind: AttrInt, I: v}
}

// TypeAttr builds a type attribute.
func TypeAttr(name string, dt tensor.DataType) Attribute {
	return Attribute{Name: name, Kind: AttrType, Type: dt}
}

// attr returns the node's value for name, if set.
func (n *Node) attr(name string) (Attribute, bool) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return n.Attributes[i], true
		}
	}
	return Attribute{}, false
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	if a, ok := node.attr(name); ok && a.Kind == AttrInt {
		return a.I
	}
	return defaultVal
}

// GetAttrType returns a type attribute or default value.
func GetAttrType(node *Node, name string, defaultVal tensor.DataType) tensor.DataType {
	if a, ok := node.attr(name); ok && a.Kind == AttrType {
		return a.Type
	}
	return defaultVal
}
