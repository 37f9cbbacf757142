package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resolvectx/resloc/pkg/resolver"
	"github.com/resolvectx/resloc/pkg/resources"
)

var (
	treeContext []string
	treeFormat  string
)

var treeCmd = &cobra.Command{
	Use:   "tree [configPath] [sourceDir]",
	Short: "Import a source directory and resolve every resource under a context",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := rootLogger()
		snap, err := loadSnapshot(log, args[0], args[1])
		if err != nil {
			return err
		}

		ctx, err := parseContextFlags(treeContext)
		if err != nil {
			return err
		}
		res, err := resolver.New(snap).WithContext(ctx)
		if err != nil {
			return err
		}

		if treeFormat == "tree" {
			out := snap.Tree.Dump(func(r *resources.Resource) string {
				if r.Path == nil {
					return "<unresolved>"
				}
				val, err := res.Resolve(*r.Path)
				if err != nil {
					return fmt.Sprintf("<%v>", err)
				}
				return string(val)
			})
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		composed, err := res.ResolveComposedResourceTree("", resolver.ComposeOptions{})
		if err != nil {
			return fmt.Errorf("composing tree: %w", err)
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, composed, "", "  "); err != nil {
			return fmt.Errorf("formatting composed tree: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), buf.String())
		return nil
	},
}

func newTreeCmd() *cobra.Command { return treeCmd }

func init() {
	treeCmd.Flags().StringArrayVar(&treeContext, "context", nil, "qualifier=value, repeatable")
	treeCmd.Flags().StringVar(&treeFormat, "format", "json", "output format: json or tree")
}
