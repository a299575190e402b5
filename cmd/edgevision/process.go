package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newProcessCommand(opts *rootOptions) *cobra.Command {
	var (
		algorithm string
		rawParams string
	)

	cmd := &cobra.Command{
		Use:   "process <input> <output.png>",
		Short: "Run the edge pipeline on a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.load()
			if err != nil {
				return err
			}

			params := map[string]interface{}{}
			if strings.TrimSpace(rawParams) != "" {
				if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
					return fmt.Errorf("--params must be a JSON object: %w", err)
				}
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, err := deps.pipeline.Process(cmd.Context(), data, algorithm, params)
			if err != nil {
				return err
			}

			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return err
			}

			deps.logger.Info("Main", "wrote result", map[string]interface{}{
				"input":     args[0],
				"output":    args[1],
				"algorithm": algorithm,
				"bytes":     len(out),
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "canny", "edge algorithm")
	cmd.Flags().StringVarP(&rawParams, "params", "p", "", `parameters as JSON, e.g. '{"blur":true,"ksize":5}'`)
	return cmd
}

func newHistogramCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "histogram <input>",
		Short: "Print the 256-bin grayscale histogram of a file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.load()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			counts, err := deps.pipeline.Histogram(data)
			if err != nil {
				return err
			}

			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{"histogram": counts})
		},
	}
}
