package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/ops/zeroout"
	"github.com/born-ml/zeroout/internal/tensor"
)

type runResult struct {
	Op     string `json:"op"`
	Node   string `json:"node,omitempty"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Input  []any  `json:"input"`
	Output []any  `json:"output"`
}

func (a *app) newRunCommand() *cobra.Command {
	var (
		file  string
		shape []int
	)

	c := &cobra.Command{
		Use:   "run [values...]",
		Short: "Run ZeroOut on a vector",
		Long: `Run squares every value except the one at --preserve-index, which is passed through.

Values come from the command line or from a YAML node file (--file).`,
		Example: `  born run --preserve-index 2 5 3 4
  born run --dtype float32 --output json 1.5 2 3
  born run -f node.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("no input values: pass values or --file")
			}
			if file != "" && len(args) > 0 {
				return fmt.Errorf("pass values or --file, not both")
			}
			return a.run(file, shape, args)
		},
	}

	f := c.Flags()
	f.StringVarP(&file, "file", "f", "", "YAML node file")
	f.IntSliceVar(&shape, "shape", nil, "input shape (default: a vector of all values)")
	f.String("dtype", "int32", "element type of the input values")
	f.Int64("preserve-index", 0, "index copied through unchanged")
	f.Bool("metrics", false, "print executor metrics to stderr after the run")
	_ = a.v.BindPFlag(keyDType, f.Lookup("dtype"))
	_ = a.v.BindPFlag(keyPreserveIndex, f.Lookup("preserve-index"))
	_ = a.v.BindPFlag(keyMetrics, f.Lookup("metrics"))

	return c
}

func (a *app) run(file string, shape []int, args []string) error {
	dtype, err := tensor.ParseDataType(a.v.GetString(keyDType))
	if err != nil {
		return err
	}

	var (
		node  *ops.Node
		input *tensor.RawTensor
	)
	if file != "" {
		nf, err := loadNodeFile(file)
		if err != nil {
			return err
		}
		if node, err = nf.node(); err != nil {
			return err
		}
		if input, err = nf.input(dtype); err != nil {
			return fmt.Errorf("node file %s: %w", file, err)
		}
	} else {
		node = &ops.Node{
			Name:       "cli",
			OpType:     zeroout.OpName,
			Attributes: []ops.Attribute{ops.IntAttr(zeroout.PreserveIndexAttr, a.v.GetInt64(keyPreserveIndex))},
		}
		if input, err = tensor.ParseValues(dtype, tensor.Shape(shape), args); err != nil {
			return fmt.Errorf("parse values: %w", err)
		}
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	metrics, err := ops.NewMetrics(promReg)
	if err != nil {
		return err
	}

	exec := ops.NewExecutor(registry, ops.WithLogger(a.logger()), ops.WithMetrics(metrics))
	outs, runErr := exec.Run(node, input)

	if a.v.GetBool(keyMetrics) {
		if err := writeMetrics(a, promReg); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	res := runResult{
		Op:     node.OpType,
		Node:   node.Name,
		DType:  input.DType().String(),
		Shape:  []int(input.Shape()),
		Input:  input.Values(),
		Output: outs[0].Values(),
	}
	if a.jsonOutput() {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}

	table := tablewriter.NewWriter(a.stdout)
	table.Header("Index", "Input", "Output")
	for i := range res.Input {
		_ = table.Append(fmt.Sprint(i), fmt.Sprint(res.Input[i]), fmt.Sprint(res.Output[i]))
	}
	return table.Render()
}

func writeMetrics(a *app, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(a.stderr, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
