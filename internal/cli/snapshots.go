package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// historyCommand creates the "history" command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		out   outputFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history <owner/repo>",
		Short: "List the saved snapshots of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			owner, name, err := github.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snaps, err := st.List(ctx, owner+"/"+name, limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				printInfo("No snapshots of %s/%s", owner, name)
				printNextStep("Save one with", fmt.Sprintf("ghnet dependents %s/%s --save", owner, name))
				return nil
			}
			return out.write(snaps)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many snapshots (0 for all)")
	addOutputFlags(cmd, &out)
	return cmd
}

// diffCommand creates the "diff" command.
func (c *CLI) diffCommand() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "diff <old-id> [new-id]",
		Short: "Compare two snapshots",
		Long: `Show the dependents gained and lost between two snapshots. Without new-id
the old snapshot is compared with the newest snapshot of the same repository
and package.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, id := range args {
				if !store.ValidID(id) {
					return errors.New(errors.ErrCodeInvalidInput, "invalid snapshot id %q", id)
				}
			}
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			older, err := st.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", args[0], err)
			}

			var newer *store.Snapshot
			if len(args) == 2 {
				newer, err = st.Get(ctx, args[1])
				if err != nil {
					return fmt.Errorf("snapshot %s: %w", args[1], err)
				}
			} else {
				newer, err = st.Latest(ctx, older.Scan.Repository.String(), older.Scan.Options.PackageID)
				if err != nil {
					return err
				}
				if newer.ID == older.ID {
					printInfo("%s is the newest snapshot of %s", older.ID, older.Scan.Repository.String())
					return nil
				}
			}

			if !sameScanTarget(older, newer) {
				printWarning("Comparing snapshots of different targets: %s and %s",
					older.Scan.Repository.String(), newer.Scan.Repository.String())
			}
			return out.write(store.Compare(older, newer))
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

func sameScanTarget(a, b *store.Snapshot) bool {
	return a.Scan.Repository.FullName == b.Scan.Repository.FullName &&
		a.Scan.Options.PackageID == b.Scan.Options.PackageID
}
