package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/internal/config"
	"github.com/pierre-ernst/ghnet/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached pages, API responses and scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.config().Cache.Backend == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}

			ch, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache is empty")
				return nil
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			} else {
				printDetail("Redis: %s", c.config().Redis.Addr)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where responses are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			switch cfg.Cache.Backend {
			case config.CacheRedis:
				fmt.Printf("redis://%s/%d\n", cfg.Redis.Addr, cfg.Redis.DB)
				return nil
			case config.CacheNone:
				printInfo("Caching is disabled")
				return nil
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				d, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Println(dir)
			return nil
		},
	}
}
