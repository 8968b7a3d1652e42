package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/jsonmend/providers/cache"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeCache, err := a.cfg.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer closeCache()

			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled; nothing to purge.")
				return nil
			}
			purger, ok := store.(cache.Purger)
			if !ok {
				return fmt.Errorf("cache backend %q does not support purge", a.cfg.Cache.Backend)
			}

			n, err := purger.Purge(cmd.Context())
			if err != nil {
				return fmt.Errorf("purging cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d entries from the %s cache.\n", n, a.cfg.Cache.Backend)
			return nil
		},
	})
	return cmd
}
