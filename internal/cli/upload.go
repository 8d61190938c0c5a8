package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image",
		Long:  "Upload one image to the configured image host and print its URL. Requires 'realty login'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := newAPIClient().Upload(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("uploading image: %w", err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"url": url})
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
