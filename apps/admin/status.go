package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/offline"
)

func (cli *commandLine) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity (when the gateway is running) and record counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if body, err := cli.gatewayStatus(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "gateway: %s\n", body)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "gateway: not running")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "schema version\t%d\n", offline.SchemaVersion)
			for _, coll := range offline.Collections() {
				recs, err := cli.store.GetAll(cmd.Context(), coll)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\n", coll, len(recs))
			}
			return w.Flush()
		},
	}
}

// gatewayStatus asks the running gateway daemon for its view: connectivity
// state plus pending counts.
func (cli *commandLine) gatewayStatus() (string, error) {
	if cli.conf == nil {
		return "", fmt.Errorf("no gateway address configured")
	}
	addr := cli.conf.Server.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/internal/status")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
