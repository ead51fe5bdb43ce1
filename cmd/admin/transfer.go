package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"horizon/internal/domain/transaction"
)

var transferFlags struct {
	from     string
	to       string
	amount   float64
	name     string
	category string
	channel  string
	email    string
}

var transferCmd = &cobra.Command{
	Use:     "record-transfer",
	Short:   "Record a transfer between two bank connections in the ledger",
	Example: `  admin record-transfer --from=<connection-id> --to=<connection-id> --amount=25.50 --name="Rent share"`,
	RunE:    runTransfer,
}

func init() {
	transferCmd.Flags().StringVar(&transferFlags.from, "from", "", "Sender connection ID (required)")
	transferCmd.Flags().StringVar(&transferFlags.to, "to", "", "Receiver connection ID (required)")
	transferCmd.Flags().Float64Var(&transferFlags.amount, "amount", 0, "Amount, must be positive (required)")
	transferCmd.Flags().StringVar(&transferFlags.name, "name", "", "Description shown in the history")
	transferCmd.Flags().StringVar(&transferFlags.category, "category", "", "Category shown in the history")
	transferCmd.Flags().StringVar(&transferFlags.channel, "channel", "", "Payment channel shown in the history")
	transferCmd.Flags().StringVar(&transferFlags.email, "email", "", "Receiver email")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(transferCmd)
}

func runTransfer(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	sender, err := e.connection.GetByID(ctx, transferFlags.from)
	if err != nil {
		return fmt.Errorf("sender connection %s: %w", transferFlags.from, err)
	}
	receiver, err := e.connection.GetByID(ctx, transferFlags.to)
	if err != nil {
		return fmt.Errorf("receiver connection %s: %w", transferFlags.to, err)
	}

	t, err := e.transfers.Create(ctx, transaction.CreateTransferParams{
		Name:                 optional(transferFlags.name),
		Amount:               transferFlags.amount,
		Channel:              optional(transferFlags.channel),
		Category:             optional(transferFlags.category),
		SenderUserID:         sender.UserID,
		ReceiverUserID:       receiver.UserID,
		SenderConnectionID:   sender.ID,
		ReceiverConnectionID: receiver.ID,
		Email:                transferFlags.email,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Transfer recorded"))
	fmt.Printf("  ID:     %s\n", t.ID)
	fmt.Printf("  Amount: %s\n", formatAmount(transferFlags.amount))
	fmt.Printf("  %s -> %s\n", sender.ID, receiver.ID)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
