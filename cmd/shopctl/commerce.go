package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/abduss/storefront/internal/cart"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/review"
	"github.com/spf13/cobra"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Manage the shopping cart"}

	show := func(cmd *cobra.Command, ct cart.Cart) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
		for _, it := range ct.Items {
			fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\n", it.ID, it.Name, it.Quantity, it.Price, it.Subtotal)
		}
		fmt.Fprintf(w, "\t\t%d\t\t%.2f\n", ct.TotalItems, ct.TotalAmount)
		return w.Flush()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ct, err := c.app.Cart.Get(cmd.Context())
				if err != nil {
					return err
				}
				return show(cmd, ct)
			},
		},
		&cobra.Command{
			Use:   "add <product-id> [quantity]",
			Short: "Add a product",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty := 1
				if len(args) == 2 {
					if qty, err = strconv.Atoi(args[1]); err != nil {
						return fmt.Errorf("invalid quantity %q", args[1])
					}
				}
				ct, err := c.app.Cart.AddItem(cmd.Context(), id, qty)
				if err != nil {
					return err
				}
				return show(cmd, ct)
			},
		},
		&cobra.Command{
			Use:   "update <item-id> <quantity>",
			Short: "Change an item's quantity; zero removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				ct, err := c.app.Cart.UpdateQuantity(cmd.Context(), id, qty)
				if err != nil {
					return err
				}
				return show(cmd, ct)
			},
		},
		&cobra.Command{
			Use:   "remove <item-id>",
			Short: "Remove an item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ct, err := c.app.Cart.RemoveItem(cmd.Context(), id)
				if err != nil {
					return err
				}
				return show(cmd, ct)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Cart.Clear(cmd.Context())
			},
		},
	)
	return cmd
}

func newProductsCmd(c *cli) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{Use: "products", Short: "Browse the catalog"}
	cmd.PersistentFlags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.PersistentFlags().IntVar(&size, "size", 0, "Page size")

	table := func(cmd *cobra.Command, p gateway.Page[catalog.Product]) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tRATING")
		for _, r := range p.Content {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%.1f\n", r.ID, r.Name, r.Price, r.StockQuantity, r.AverageRating)
		}
		fmt.Fprintf(w, "page %d/%d, %d products\n", p.Number+1, max(p.TotalPages, 1), p.TotalElements)
		return w.Flush()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List products, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := c.app.Catalog.Products(cmd.Context(), gateway.PageQuery{Page: page, Size: size})
				if err != nil {
					return err
				}
				return table(cmd, p)
			},
		},
		&cobra.Command{
			Use:   "search <keyword>",
			Short: "Search products",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := c.app.Catalog.Search(cmd.Context(), args[0], page, size)
				if err != nil {
					return err
				}
				return table(cmd, p)
			},
		},
		&cobra.Command{
			Use:   "show <product-id>",
			Short: "Show one product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				p, err := c.app.Catalog.Product(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			},
		},
	)
	return cmd
}

func newReviewsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "reviews", Short: "Moderate product reviews (admin)"}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews awaiting moderation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Reviews.ListManagement(cmd.Context(), gateway.PageQuery{Page: page, Size: size})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRODUCT\tRATING\tSTATUS\tCUSTOMER")
			for _, r := range p.Content {
				customer := "-"
				if r.Customer != nil {
					customer = r.Customer.FullName
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.ID, r.ProductName, r.Rating, r.Status, customer)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	list.Flags().IntVar(&size, "size", 0, "Page size")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "show <review-id>",
			Short: "Show one review",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				r, err := c.app.Reviews.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), r)
			},
		},
		&cobra.Command{
			Use:   "delete <review-id>",
			Short: "Delete a review",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return c.app.Reviews.Delete(cmd.Context(), id)
			},
		},
		&cobra.Command{
			Use:   "status <review-id> <PENDING|APPROVED|REJECTED>",
			Short: "Set a review's moderation status",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				status, err := review.ParseStatus(args[1])
				if err != nil {
					return err
				}
				return c.app.Reviews.UpdateStatus(cmd.Context(), id, status)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show moderation statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				stats, err := c.app.Reviews.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			},
		},
	)
	return cmd
}
