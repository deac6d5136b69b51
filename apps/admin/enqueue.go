package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/offline"
)

func (cli *commandLine) enqueueCmd() *cobra.Command {
	var (
		kind     string
		endpoint string
		method   string
		payload  string
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a mutation for replay once connectivity returns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			action, err := cli.queue.Enqueue(cmd.Context(), offline.NewAction{
				Kind:     offline.Kind(kind),
				Endpoint: endpoint,
				Method:   method,
				Payload:  json.RawMessage(payload),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", action.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(offline.KindGeneric), "action kind: quiz-submission, progress-update or generic")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "upstream API path, e.g. /quiz/1/submit")
	cmd.Flags().StringVar(&method, "method", "POST", "HTTP method to replay with")
	cmd.Flags().StringVar(&payload, "payload", "null", "JSON request body")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}
