package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resolver"
)

var resolveContext []string

var resolveCmd = &cobra.Command{
	Use:   "resolve [configPath] [sourceDir] [resourceId...]",
	Short: "Import a source directory and resolve one or more resources under a context",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := rootLogger()
		snap, err := loadSnapshot(log, args[0], args[1])
		if err != nil {
			return err
		}

		ctx, err := parseContextFlags(resolveContext)
		if err != nil {
			return err
		}
		res, err := resolver.New(snap).WithContext(ctx)
		if err != nil {
			return err
		}

		resourceIds := make([]ids.ResourceId, len(args[2:]))
		for i, raw := range args[2:] {
			id, err := ids.ToResourceId(raw)
			if err != nil {
				return err
			}
			resourceIds[i] = id
		}

		var enc []byte
		if len(resourceIds) == 1 {
			val, err := res.Resolve(resourceIds[0])
			if err != nil {
				return fmt.Errorf("%s: %w", resourceIds[0], err)
			}
			enc, err = json.MarshalIndent(val, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling result: %w", err)
			}
		} else {
			resolved, err := res.ResolveConcurrently(context.Background(), resourceIds)
			if err != nil {
				return err
			}
			out := make(map[string]json.RawMessage, len(resolved))
			for id, v := range resolved {
				out[id.String()] = v
			}
			enc, err = json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling result: %w", err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(enc))
		return nil
	},
}

func newResolveCmd() *cobra.Command { return resolveCmd }

// parseContextFlags turns repeated --context k=v flags into a context map.
func parseContextFlags(kvs []string) (map[string]string, error) {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%s: --context must be qualifier=value", kv)
		}
		out[k] = v
	}
	return out, nil
}

func init() {
	resolveCmd.Flags().StringArrayVar(&resolveContext, "context", nil, "qualifier=value, repeatable")
}
