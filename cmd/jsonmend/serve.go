package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/jsonmend/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the repair pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			p, err := a.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.close()

			srv := server.New(addr, p.loader, p.observer, server.WithMaxBodyBytes(maxBody))
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (POST /v1/load, GET /healthz)\n", srv.Addr())
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr from the config)")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "Maximum request body in bytes")
	return cmd
}
