package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"horizon/internal/domain/bank"
)

var linkFlags struct {
	userID      string
	accessToken string
	itemID      string
	accountID   string
}

var linkCmd = &cobra.Command{
	Use:   "link-bank",
	Short: "Store a bank connection for a user",
	Long:  "Stores an already-exchanged provider access token as a bank connection. The token is encrypted at rest.",
	Example: `  admin link-bank --user-id=u_123 --access-token=access-sandbox-... --account-id=BxBXxLj1m4HMXBm9WZZmCWVbPjX16EHwv99vp
  admin link-bank --user-id=u_123 --access-token=access-sandbox-... --item-id=eVBnVMp7zdTJLkRNr33Rs6zr7KNJqBFL9DrE6`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVar(&linkFlags.userID, "user-id", "", "Owner user ID (required)")
	linkCmd.Flags().StringVar(&linkFlags.accessToken, "access-token", "", "Provider access token (required)")
	linkCmd.Flags().StringVar(&linkFlags.itemID, "item-id", "", "Provider item ID")
	linkCmd.Flags().StringVar(&linkFlags.accountID, "account-id", "", "Provider account ID to show for this connection")
	_ = linkCmd.MarkFlagRequired("user-id")
	_ = linkCmd.MarkFlagRequired("access-token")
	rootCmd.AddCommand(linkCmd)
}

func runLink(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	conn, err := e.connection.Create(ctx, bank.CreateConnectionParams{
		UserID:      linkFlags.userID,
		AccessToken: linkFlags.accessToken,
		ItemID:      linkFlags.itemID,
		AccountID:   linkFlags.accountID,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Bank connection stored"))
	fmt.Printf("  Connection ID: %s\n", conn.ID)
	fmt.Printf("  Shareable ID:  %s\n", conn.ShareableID)
	fmt.Printf("  User:          %s\n", conn.UserID)
	return nil
}
