package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evrlink/evrlink-mirror/internal/api/shared/dto"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	internalTypes "github.com/evrlink/evrlink-mirror/internal/types"
)

func pendingCommand(current func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Inspect and resolve pending ledger operations",
	}

	var (
		statuses []string
		caller   string
		limit    int
		offset   uint64
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending operations, oldest first (unresolved ones by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.PendingOperationFilter{
				Statuses: schema.UnresolvedOperationStatuses,
				Limit:    limit,
				Offset:   offset,
			}
			if len(statuses) > 0 {
				filter.Statuses = make([]schema.OperationStatus, 0, len(statuses))
				for _, s := range statuses {
					filter.Statuses = append(filter.Statuses, schema.OperationStatus(s))
				}
			}
			if caller != "" {
				if !internalTypes.IsEthereumAddress(caller) {
					return fmt.Errorf("invalid caller address: %s", caller)
				}
				filter.Caller = internalTypes.NormalizeAddress(caller)
			}

			ops, total, err := current().store.ListPendingOperations(cmd.Context(), filter)
			if err != nil {
				return err
			}
			items := make([]*dto.OperationResponse, 0, len(ops))
			for _, op := range ops {
				items = append(items, dto.MapOperationToDTO(op))
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"items": items,
				"total": total,
			})
		},
	}
	listCmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status (repeatable)")
	listCmd.Flags().StringVar(&caller, "caller", "", "filter by caller address")
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of operations")
	listCmd.Flags().Uint64Var(&offset, "offset", 0, "number of operations to skip")

	resolveCmd := &cobra.Command{
		Use:   "resolve <tx-hash>",
		Short: "Drive an unresolved operation to a terminal state without resubmitting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := current().service.ResolveOperation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.MapOperationToDTO(op))
		},
	}

	statsCmd := &cobra.Command{
		Use:   "counts",
		Short: "Count operations per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := current().store.CountPendingOperationsByStatus(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), counts)
		},
	}

	cmd.AddCommand(listCmd, resolveCmd, statsCmd)
	return cmd
}

func healCommand(current func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Rewrite mirror rows from the current ledger state",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "giftcard <id>",
			Short: "Heal a gift card",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				result, err := current().projector.HealGiftCard(cmd.Context(), id, nil)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			},
		},
		&cobra.Command{
			Use:   "background <id>",
			Short: "Heal a background",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				result, err := current().projector.HealBackground(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			},
		},
	)
	return cmd
}

func statsCommand(current func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Manage derived user statistics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute <address>",
		Short: "Recompute the counters of a user from the mirror tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !internalTypes.IsEthereumAddress(args[0]) {
				return fmt.Errorf("invalid address: %s", args[0])
			}
			user, err := current().store.RecomputeUserStats(cmd.Context(), internalTypes.NormalizeAddress(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.MapUserToDTO(user))
		},
	})
	return cmd
}

func catchUpCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catch-up",
		Short: "Heal every ledger entity missing from the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := current().service.CatchUp(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}
