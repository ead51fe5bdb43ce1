package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"horizon/internal/domain/banking"
)

var (
	flagUserID    string
	flagSelection string
	flagPage      int
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Print a user's linked accounts and balance totals",
	RunE:  runAccounts,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print one page of a user's transaction history",
	RunE:  runHistory,
}

func init() {
	accountsCmd.Flags().StringVar(&flagUserID, "user-id", "", "User ID (required)")
	_ = accountsCmd.MarkFlagRequired("user-id")

	historyCmd.Flags().StringVar(&flagUserID, "user-id", "", "User ID (required)")
	historyCmd.Flags().StringVar(&flagSelection, "id", "", "Connection ID (defaults to the first account)")
	historyCmd.Flags().IntVar(&flagPage, "page", 1, "Page number")
	_ = historyCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(accountsCmd, historyCmd)
}

func runAccounts(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	aggregator, _, err := e.bankingServices()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	agg, err := aggregator.GetAccounts(ctx, flagUserID)
	if err != nil {
		return err
	}

	fmt.Print(renderAggregate(agg))
	return nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	_, history, err := e.bankingServices()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	view := history.Load(ctx, flagUserID, flagSelection, flagPage)
	fmt.Print(renderHistory(view))
	if view.State != banking.StateOK && view.State != banking.StateNoTransactions {
		return fmt.Errorf("history unavailable: %s", view.State)
	}
	return nil
}
