package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapi/internal/transport"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the response cache",
	}

	cacheCmd.AddCommand(newCachePathCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the response cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Path)
			return nil
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show response cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cache *transport.Cache) error {
				stats, err := cache.Stats(cmd.Context())
				if err != nil {
					return err
				}
				var size int64
				if info, err := os.Stat(cache.Path()); err == nil {
					size = info.Size()
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"path":           cache.Path(),
						"entries":        stats.Entries,
						"expired":        stats.Expired,
						"size_bytes":     size,
						"retention_days": int(cache.Retention().Hours() / 24),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path:      %s\n", cache.Path())
				fmt.Fprintf(out, "Entries:   %d (%d expired)\n", stats.Entries, stats.Expired)
				fmt.Fprintf(out, "Size:      %s\n", humanBytes(size))
				fmt.Fprintf(out, "Retention: %d days\n", int(cache.Retention().Hours()/24))
				if stats.Entries > 0 {
					const stampLayout = "2006-01-02 15:04"
					fmt.Fprintf(out, "Oldest:    %s\n", stats.Oldest.Local().Format(stampLayout))
					fmt.Fprintf(out, "Newest:    %s\n", stats.Newest.Local().Format(stampLayout))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit statistics as JSON")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cache *transport.Cache) error {
				removed, err := cache.Prune(cmd.Context())
				if err != nil {
					return err
				}
				if removed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired responses\n", removed)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cache *transport.Cache) error {
				removed, err := cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached responses\n", removed)
				return nil
			})
		},
	}
}

// withCache opens the configured cache file for maintenance. The file is
// opened even when caching is disabled for searches, so stale data can still
// be inspected and removed.
func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*transport.Cache) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(cmd.ErrOrStderr(), "Response cache is disabled for searches (set [cache] enabled = true in config.toml)")
	}
	cache, err := transport.OpenCache(cmd.Context(), cfg.Cache.Path, cfg.Retention())
	if err != nil {
		return asConfigurationError(err)
	}
	defer cache.Close()
	return fn(cache)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
