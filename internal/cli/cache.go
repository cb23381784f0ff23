package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cachebackend "github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/cache"
	"github.com/matzehuels/depot/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local artifact and listing caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var artifacts bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached directory listings",
		Long: `Clear the cached directory listings of remote repositories. With --artifacts
the local artifact cache is emptied as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := cache.NewFileCache(config.DefaultListingDir())
			if err != nil {
				return fmt.Errorf("open listing cache: %w", err)
			}
			if err := listings.Clear(); err != nil {
				return fmt.Errorf("clear listing cache: %w", err)
			}
			printSuccess("Cleared cached listings")
			printDetail("Directory: %s", listings.Dir())

			if !artifacts {
				return nil
			}
			dir := cachebackend.DefaultDir()
			count, err := clearDir(dir)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached artifact items", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&artifacts, "artifacts", false, "also clear the artifact cache")

	return cmd
}

// clearDir removes every file below dir and the emptied subdirectories,
// keeping dir itself. It returns the number of removed files.
func clearDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == dir || d.IsDir() {
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return count, err
	}
	for _, e := range entries {
		if e.IsDir() {
			os.RemoveAll(filepath.Join(dir, e.Name()))
		}
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("Artifacts", cachebackend.DefaultDir())
			printKeyValue("Listings", config.DefaultListingDir())
			return nil
		},
	}
}
