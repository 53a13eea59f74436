package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/report"
)

// ownerCommand creates the "owner" command.
func (c *CLI) ownerCommand() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "owner <login>",
		Short: "Show a GitHub user or organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateOwner(args[0]); err != nil {
				return err
			}
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			owner, err := s.net.Owner(ctx, args[0])
			if err != nil {
				return err
			}
			return out.write(owner)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

// packagesCommand creates the "packages" command.
func (c *CLI) packagesCommand() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "packages <owner/repo>",
		Short: "List the packages a repository publishes",
		Long: `List the packages a repository publishes, as shown in the package menu of
its dependents page. Use a package id with --package to scan its dependents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			repo, err := s.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			pkgs, err := s.net.ListPackages(ctx, repo)
			if err != nil {
				return err
			}
			if len(pkgs) == 0 {
				printInfo("%s publishes no packages", repo)
			}
			return out.write(pkgs)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

// countCommand creates the "count" command.
func (c *CLI) countCommand() *cobra.Command {
	var (
		out       outputFlags
		packageID string
	)
	cmd := &cobra.Command{
		Use:   "count <owner/repo>",
		Short: "Count the repositories depending on a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidatePackageID(packageID); err != nil {
				return err
			}
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			repo, err := s.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			n, err := s.net.DependentsCount(ctx, repo, packageID)
			if err != nil {
				return err
			}
			return out.write(report.Count{Repository: repo.String(), PackageID: packageID, Dependents: n})
		},
	}
	cmd.Flags().StringVarP(&packageID, "package", "p", "", "package id (see the packages command)")
	addOutputFlags(cmd, &out)
	return cmd
}

// resolve parses an owner/repo reference or URL and looks the repository
// up, following renames.
func (s *session) resolve(ctx context.Context, ref string) (*github.Repository, error) {
	owner, name, err := github.ParseRepoRef(ref)
	if err != nil {
		return nil, err
	}
	return s.net.Repository(ctx, owner, name)
}
