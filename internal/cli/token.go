package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	middleware "github.com/markdave123-py/Chatlens/internal/api/middlewares"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	Long: `Mint a bearer token signed with JWT_SECRET.

The API only checks tokens when JWT_SECRET is set.

Examples:
  chatlens token
  chatlens token --subject web --ttl 168h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := middleware.GenerateToken(cfg.JWTSecret, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "chatlens", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
