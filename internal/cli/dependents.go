package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// scanFlags select and filter the dependents of a scan.
type scanFlags struct {
	packageID   string
	pick        bool
	min         int64
	anyLanguage bool
}

func addScanFlags(cmd *cobra.Command, f *scanFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.packageID, "package", "p", "", "package id (see the packages command)")
	fs.BoolVar(&f.pick, "pick", false, "choose the package interactively")
	fs.Int64Var(&f.min, "min", 1, "minimum dependents a dependent must have itself")
	fs.BoolVar(&f.anyLanguage, "any-language", false, "keep dependents written in any language")
	fs.Int("max-pages", 0, "stop after this many pages (default all)")
	fs.Int("concurrency", 0, "rows evaluated at once (default 4)")
	bindConfigKey(fs, "max-pages", "scan.max_pages")
	bindConfigKey(fs, "concurrency", "scan.concurrency")
	cmd.MarkFlagsMutuallyExclusive("package", "pick")
}

func (c *CLI) dependentsCommand() *cobra.Command {
	var (
		scan scanFlags
		out  outputFlags
		save bool
	)
	cmd := &cobra.Command{
		Use:   "dependents <owner/repo>",
		Short: "List the popular dependents of a repository",
		Long: `List the repositories depending on a repository that have dependents of
their own. By default only dependents written in the repository's language
and with at least one dependent are kept.

Examples:
  ghnet dependents FasterXML/jackson-core
  ghnet dependents FasterXML/jackson-core --pick --min 100
  ghnet dependents spf13/cobra --any-language -f json -o cobra.json
  ghnet dependents spf13/cobra --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			result, err := c.runScan(ctx, s, args[0], &scan)
			if err != nil {
				return err
			}
			if save {
				if err := c.saveScan(ctx, result); err != nil {
					return err
				}
			}
			return out.write(result)
		},
	}
	addScanFlags(cmd, &scan)
	addOutputFlags(cmd, &out)
	cmd.Flags().BoolVar(&save, "save", false, "save the result as a snapshot")
	return cmd
}

// runScan resolves ref, picks the package and lists its dependents with a
// spinner showing page progress.
func (c *CLI) runScan(ctx context.Context, s *session, ref string, f *scanFlags) (*network.Scan, error) {
	if f.min < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--min must not be negative")
	}
	if err := errors.ValidatePackageID(f.packageID); err != nil {
		return nil, err
	}

	repo, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	packageID := f.packageID
	if f.pick {
		packageID, err = pick(ctx, s, repo)
		if err != nil {
			return nil, err
		}
	}

	opts := network.DefaultScanOptions()
	opts.PackageID = packageID
	opts.MinDependents = f.min
	opts.SameLanguage = !f.anyLanguage
	opts.MaxPages = c.config().Scan.MaxPages

	if opts.SameLanguage && repo.Language == "" {
		printWarning("%s has no primary language; only dependents without one are kept", repo)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning dependents of %s", repo))
	opts.OnPage = func(p network.PageProgress) {
		spinner.SetMessage(fmt.Sprintf("Scanning dependents of %s: page %d, %d kept", repo, p.Page, p.Kept))
	}

	prog := newProgress(c.Logger)
	spinner.Start()
	result, err := s.net.ListDependents(ctx, repo, opts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	prog.done(fmt.Sprintf("Found %d dependents of %s", len(result.Dependents), repo))
	printStats(result.Pages, len(result.Dependents), len(result.Skipped), result.Truncated)
	if result.Truncated {
		printWarning("Stopped after %d pages; raise --max-pages to read them all", result.Pages)
	}
	return result, nil
}

// pick lets the user choose one of the packages of repo. A repository with
// a single package needs no choice.
func pick(ctx context.Context, s *session, repo *github.Repository) (string, error) {
	pkgs, err := s.net.ListPackages(ctx, repo)
	if err != nil {
		return "", err
	}
	switch len(pkgs) {
	case 0:
		printInfo("%s publishes no packages, scanning its default dependents", repo)
		return "", nil
	case 1:
		printInfo("Using package %s", pkgs[0].Name)
		return pkgs[0].ID, nil
	}

	selected, err := pickPackage(repo.String(), pkgs)
	if err != nil {
		return "", err
	}
	if selected == nil {
		return "", context.Canceled
	}
	return selected.ID, nil
}

// saveScan stores result and reports how it differs from the previous
// snapshot of the same repository and package.
func (c *CLI) saveScan(ctx context.Context, result *network.Scan) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	fullName := result.Repository.String()
	prev, err := st.Latest(ctx, fullName, result.Options.PackageID)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		return err
	}

	snap, err := st.Save(ctx, result)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	printSuccess("Saved snapshot %s", snap.ID)

	if prev != nil {
		d := store.Compare(prev, snap)
		if d.Empty() {
			printDetail("No change since %s", prev.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
		} else {
			printDetail("+%d -%d since %s", len(d.Added), len(d.Removed), prev.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
			printNextStep("Details", fmt.Sprintf("ghnet diff %s %s", prev.ID, snap.ID))
		}
	}
	return nil
}
