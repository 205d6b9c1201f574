package cmd

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/tensor"
)

// nodeFile is the YAML description of a single node and its input:
//
//	op: ZeroOut
//	name: zero_out
//	attrs:
//	  T: int32
//	  preserve_index: 2
//	input:
//	  shape: [3]
//	  values: [5, 3, 4]
type nodeFile struct {
	Op    string         `yaml:"op"`
	Name  string         `yaml:"name"`
	Attrs map[string]any `yaml:"attrs"`
	Input struct {
		DType  string   `yaml:"dtype"`
		Shape  []int    `yaml:"shape"`
		Values []string `yaml:"values"`
	} `yaml:"input"`
}

func loadNodeFile(path string) (*nodeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read node file: %w", err)
	}

	var nf nodeFile
	if err := yaml.Unmarshal(data, &nf); err != nil {
		return nil, fmt.Errorf("parse node file %s: %w", path, err)
	}
	if nf.Op == "" {
		return nil, fmt.Errorf("node file %s: missing op", path)
	}
	return &nf, nil
}

// node converts the file's attributes into an ops.Node. String values are
// type attributes, integers are int attributes.
func (nf *nodeFile) node() (*ops.Node, error) {
	names := make([]string, 0, len(nf.Attrs))
	for name := range nf.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	node := &ops.Node{Name: nf.Name, OpType: nf.Op}
	for _, name := range names {
		switch v := nf.Attrs[name].(type) {
		case int:
			node.Attributes = append(node.Attributes, ops.IntAttr(name, int64(v)))
		case string:
			dt, err := tensor.ParseDataType(v)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", name, err)
			}
			node.Attributes = append(node.Attributes, ops.TypeAttr(name, dt))
		default:
			return nil, fmt.Errorf("attribute %s: unsupported value %v (%T)", name, v, v)
		}
	}
	return node, nil
}

// input builds the input tensor. The dtype comes from input.dtype, then the
// node's T attribute, then fallback.
func (nf *nodeFile) input(fallback tensor.DataType) (*tensor.RawTensor, error) {
	dtype := fallback
	if t, ok := nf.Attrs["T"].(string); ok {
		dt, err := tensor.ParseDataType(t)
		if err != nil {
			return nil, err
		}
		dtype = dt
	}
	if nf.Input.DType != "" {
		dt, err := tensor.ParseDataType(nf.Input.DType)
		if err != nil {
			return nil, err
		}
		dtype = dt
	}

	var shape tensor.Shape
	if nf.Input.Shape != nil {
		shape = tensor.Shape(nf.Input.Shape)
	}
	return tensor.ParseValues(dtype, shape, nf.Input.Values)
}
