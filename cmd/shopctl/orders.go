package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/order"
	"github.com/spf13/cobra"
)

func printOrders(cmd *cobra.Command, p gateway.Page[order.Order]) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tSTATUS\tTOTAL\tCUSTOMER")
	for _, o := range p.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n", o.ID, o.OrderCode, o.Status, o.TotalAmount, o.CustomerName)
	}
	return w.Flush()
}

func newOrdersCmd(c *cli) *cobra.Command {
	var (
		page, size int
		status     string
	)
	cmd := &cobra.Command{Use: "orders", Short: "Inspect and manage orders"}
	cmd.PersistentFlags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.PersistentFlags().IntVar(&size, "size", 10, "Page size")

	seller := &cobra.Command{
		Use:   "seller",
		Short: "List orders of the signed-in seller's shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Orders.SellerOrders(cmd.Context(), status, page, size)
			if err != nil {
				return err
			}
			return printOrders(cmd, p)
		},
	}
	seller.Flags().StringVar(&status, "status", "", "Only orders in this status")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "mine",
			Short: "List your orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := c.app.Orders.MyOrders(cmd.Context(), page, size)
				if err != nil {
					return err
				}
				return printOrders(cmd, p)
			},
		},
		&cobra.Command{
			Use:   "show <order-id>",
			Short: "Show one order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				o, err := c.app.Orders.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), o)
			},
		},
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				o, err := c.app.Orders.Cancel(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order %s is %s\n", o.OrderCode, o.Status)
				return nil
			},
		},
		seller,
	)
	return cmd
}

func newReportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Sales reports (admin)"}

	var (
		year, month int
		archive     bool
		outDir      string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Download the order spreadsheet for a year or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if archive && c.app.Archiver == nil {
				return fmt.Errorf("--archive needs MINIO_ENDPOINT to be configured")
			}
			exp, err := c.app.Reports.ExportOrders(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			if archive {
				archived, err := c.app.Archiver.Archive(cmd.Context(), exp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %s (%d bytes), link valid until %s\n%s\n",
					archived.Object, archived.Size, archived.Expires.Local().Format(time.RFC1123), archived.URL)
				return nil
			}
			path := filepath.Join(outDir, filepath.Base(exp.Filename))
			if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(exp.Data))
			return nil
		},
	}
	export.Flags().IntVar(&year, "year", time.Now().Year(), "Year to export")
	export.Flags().IntVar(&month, "month", 0, "Month to export (1-12); whole year when 0")
	export.Flags().BoolVar(&archive, "archive", false, "Store the export in MinIO and print a download link")
	export.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the spreadsheet to")

	cmd.AddCommand(export)
	return cmd
}
