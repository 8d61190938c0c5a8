package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and login status",
		Long:  "Tests the connection to the server and shows whether a stored admin token is present and unexpired.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, out io.Writer) error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.New(serverURL, "").Health(ctx); err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
	} else {
		fmt.Fprintln(out, "Status:  ✓ connected")
	}

	if token == "" {
		fmt.Fprintln(out, "Admin:   not logged in")
		fmt.Fprintln(out, "\nRun 'realty login' to authenticate.")
		return nil
	}

	exp, err := tokenExpiry(token)
	switch {
	case err != nil:
		fmt.Fprintln(out, "Admin:   ✗ stored token is unreadable")
		fmt.Fprintln(out, "\nRun 'realty login' to re-authenticate.")
	case time.Now().After(exp):
		fmt.Fprintf(out, "Admin:   ✗ token expired %s\n", exp.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(out, "\nRun 'realty login' to re-authenticate.")
	default:
		fmt.Fprintf(out, "Admin:   ✓ logged in until %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server is the only party that can verify it.
func tokenExpiry(raw string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}
