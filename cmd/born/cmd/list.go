package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/zeroout/internal/ops"
)

type opInfo struct {
	Name    string   `json:"name"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Attrs   []string `json:"attrs"`
	Kernels []string `json:"kernels"`
}

func (a *app) newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List registered operators and their kernels",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.listOps()
		},
	}
}

func (a *app) listOps() error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	var infos []opInfo
	for _, name := range registry.SupportedOps() {
		def, err := registry.LookupOp(name)
		if err != nil {
			return err
		}

		info := opInfo{Name: name}
		for _, in := range def.Inputs {
			info.Inputs = append(info.Inputs, in.Name+": "+in.TypeAttr)
		}
		for _, out := range def.Outputs {
			info.Outputs = append(info.Outputs, out.Name+": "+out.TypeAttr)
		}
		for _, attr := range def.Attrs {
			dflt := fmt.Sprint(attr.DefaultInt)
			if attr.Kind == ops.AttrType {
				dflt = attr.DefaultType.String()
			}
			info.Attrs = append(info.Attrs, fmt.Sprintf("%s: %s = %s", attr.Name, attr.Kind, dflt))
		}
		for _, dt := range registry.KernelTypes(name) {
			info.Kernels = append(info.Kernels, dt.String())
		}
		infos = append(infos, info)
	}

	if a.jsonOutput() {
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}

	table := tablewriter.NewWriter(a.stdout)
	table.Header("Op", "Inputs", "Outputs", "Attrs", "Kernels")
	for _, info := range infos {
		_ = table.Append(
			info.Name,
			strings.Join(info.Inputs, ", "),
			strings.Join(info.Outputs, ", "),
			strings.Join(info.Attrs, ", "),
			strings.Join(info.Kernels, ", "),
		)
	}
	return table.Render()
}
