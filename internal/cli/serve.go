package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/app"
	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/config"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server.

Settings come from defaults, then REALTY_* environment variables (a .env file is loaded when present), then the YAML file given with --config. ${VAR} references in the file are expanded. The admin password hash and JWT secret are required; generate the hash with 'realty hash-password'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFile(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.App.HTTP.Port = port
			}
			if dev {
				cfg.App.Dev = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return app.Run(cmd.Context(), app.WithConfig(cfg))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "server config file (YAML)")
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&dev, "dev", false, "human-readable debug logging")

	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password for the server config",
		Long:  "Reads a password from standard input and prints the bcrypt hash to use as admin.password_hash or REALTY_ADMIN_PASSWORD_HASH.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			pw, err := readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			if pw == "" {
				return fmt.Errorf("no password provided")
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
