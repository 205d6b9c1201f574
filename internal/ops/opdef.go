package ops

import (
	"fmt"
	"slices"

	"github.com/born-ml/zeroout/internal/tensor"
)

// AttrKind identifies the value kind of an operator attribute.
type AttrKind int

// Supported attribute kinds.
const (
	AttrInt  AttrKind = iota // 64-bit integer
	AttrType                 // element data type (a type-class constraint)
)

// String returns the attribute kind name used in descriptors.
func (k AttrKind) String() string {
	switch k {
	case AttrInt:
		return "int"
	case AttrType:
		return "type"
	default:
		return "unknown"
	}
}

// ArgDef describes one input or output slot. TypeAttr names the type
// attribute that fixes the slot's element type.
type ArgDef struct {
	Name     string
	TypeAttr string
}

// AttrDef describes an operator attribute and its default.
type AttrDef struct {
	Name        string
	Kind        AttrKind
	DefaultInt  int64
	DefaultType tensor.DataType
	Allowed     []tensor.DataType // AttrType only
}

// Allows reports whether dt satisfies a type attribute's constraint.
func (a AttrDef) Allows(dt tensor.DataType) bool {
	return slices.Contains(a.Allowed, dt)
}

// OpDef is the static descriptor of an operator: its name, typed input and
// output slots and attributes. It is immutable once registered.
type OpDef struct {
	Name    string
	Inputs  []ArgDef
	Outputs []ArgDef
	Attrs   []AttrDef
}

// NewOpDef starts a descriptor for the named operator.
//
// Example:
//
//	def := ops.NewOpDef("ZeroOut").
//	    Input("to_zero", "T").
//	    Output("zeroed", "T").
//	    TypeAttr("T", tensor.RealNumberTypes(), tensor.Int32).
//	    IntAttr("preserve_index", 0)
func NewOpDef(name string) *OpDef {
	return &OpDef{Name: name}
}

// Input appends an input slot.
func (d *OpDef) Input(name, typeAttr string) *OpDef {
	d.Inputs = append(d.Inputs, ArgDef{Name: name, TypeAttr: typeAttr})
	return d
}

// Output appends an output slot.
func (d *OpDef) Output(name, typeAttr string) *OpDef {
	d.Outputs = append(d.Outputs, ArgDef{Name: name, TypeAttr: typeAttr})
	return d
}

// TypeAttr appends a type attribute restricted to allowed, with a default.
func (d *OpDef) TypeAttr(name string, allowed []tensor.DataType, def tensor.DataType) *OpDef {
	d.Attrs = append(d.Attrs, AttrDef{
		Name:        name,
		Kind:        AttrType,
		DefaultType: def,
		Allowed:     slices.Clone(allowed),
	})
	return d
}

// IntAttr appends an integer attribute with a default.
func (d *OpDef) IntAttr(name string, def int64) *OpDef {
	d.Attrs = append(d.Attrs, AttrDef{Name: name, Kind: AttrInt, DefaultInt: def})
	return d
}

// Attr returns the named attribute definition.
func (d *OpDef) Attr(name string) (AttrDef, bool) {
	for _, a := range d.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return AttrDef{}, false
}

// KernelTypeAttr returns the first type attribute, which selects the kernel
// instantiation.
func (d *OpDef) KernelTypeAttr() (AttrDef, bool) {
	for _, a := range d.Attrs {
		if a.Kind == AttrType {
			return a, true
		}
	}
	return AttrDef{}, false
}

// Validate checks the descriptor for internal consistency.
func (d *OpDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("op def: empty name")
	}

	seen := make(map[string]bool, len(d.Attrs))
	for _, a := range d.Attrs {
		if seen[a.Name] {
			return fmt.Errorf("op %s: duplicate attribute %q", d.Name, a.Name)
		}
		seen[a.Name] = true

		if a.Kind == AttrType {
			if len(a.Allowed) == 0 {
				return fmt.Errorf("op %s: type attribute %q allows no types", d.Name, a.Name)
			}
			if !a.Allows(a.DefaultType) {
				return fmt.Errorf("op %s: default %s of %q is not an allowed type", d.Name, a.DefaultType, a.Name)
			}
		}
	}

	args := append(slices.Clone(d.Inputs), d.Outputs...)
	for _, arg := range args {
		a, ok := d.Attr(arg.TypeAttr)
		if !ok || a.Kind != AttrType {
			return fmt.Errorf("op %s: slot %q refers to unknown type attribute %q", d.Name, arg.Name, arg.TypeAttr)
		}
	}

	return nil
}
