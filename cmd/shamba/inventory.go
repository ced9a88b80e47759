package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/inventory"
	"github.com/zulandar/shamba/internal/service"
)

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Inventory commands",
	}

	cmd.AddCommand(newInventoryCheckCmd())
	cmd.AddCommand(newInventoryAddCmd())
	cmd.AddCommand(newInventoryUpdateCmd())
	cmd.AddCommand(newInventoryLowCmd())
	return cmd
}

func newInventoryCheckCmd() *cobra.Command {
	var (
		configPath string
		category   string
	)

	cmd := &cobra.Command{
		Use:   "check [name]",
		Short: "List inventory items, optionally matching a name",
		Long:  "Lists inventory items whose name contains the given text. Matching is case-insensitive.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				items, err := svc.CheckInventory(name, category)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching inventory items.")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), export.Text(export.InventoryRecords(items)))
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func newInventoryAddCmd() *cobra.Command {
	var (
		configPath string
		category   string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <quantity> <unit>",
		Short: "Add an inventory item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				id, err := svc.AddInventory(service.AddInventoryInput{
					Name:     args[0],
					Category: category,
					Quantity: qty,
					Unit:     args[2],
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added inventory item %d: %s %s %s\n", id, args[0], qty, args[2])
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&category, "category", "", "item category (feed, medicine, equipment, ...)")
	return cmd
}

func newInventoryUpdateCmd() *cobra.Command {
	var (
		configPath string
		action     string
	)

	cmd := &cobra.Command{
		Use:   "update <id> <quantity>",
		Short: "Set, add to or subtract from an item's quantity",
		Long:  "Adjusts an inventory quantity. Subtracting more than is in stock leaves the quantity at zero.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				result, err := svc.UpdateInventory(id, qty, action)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inventory item %d quantity is now %s\n", id, result)
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&action, "action", inventory.ActionSet, "set, add or subtract")
	return cmd
}

func newInventoryLowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "low",
		Short: "List items at or below their minimum quantity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				items, err := svc.LowStock()
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "All items are stocked.")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), export.Text(export.InventoryRecords(items)))
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
