package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/stylist/internal/gemini"
	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
	"github.com/spf13/cobra"
)

func newEditCmd(flags *globalFlags) *cobra.Command {
	var imagePath string
	var prompt string
	var example int
	var output string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Restyle a single photo and write the result to disk",
		Long: `Reads a PNG or JPEG photo, checks the prompt against the content filter,
sends one edit request to Gemini and writes the returned image.

The output file extension follows the MIME type Gemini returns.`,
		Example: `  # Add a jacket
  stylist edit --image me.jpg --prompt "Add a cool denim jacket"

  # Use the third canned example and choose the output name
  stylist edit --image me.png --example 3 --output sci-fi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("example") {
				if example < 1 || example > len(cfg.Examples) {
					return fmt.Errorf("--example must be between 1 and %d", len(cfg.Examples))
				}
				prompt = cfg.Examples[example-1]
			}

			asset, err := images.LoadFile(imagePath)
			if err != nil {
				return fmt.Errorf("%s: %w", studio.MsgReadFailed, err)
			}
			// Report filter and missing-input problems before a credential
			// is required.
			if err := studio.Validate(&asset, prompt, cfg.Denylist); err != nil {
				return fmt.Errorf("%s", studio.Message(err))
			}

			session := studio.NewSession()
			if err := session.SelectImage(asset); err != nil {
				return err
			}
			session.SetPrompt(prompt)

			editor, err := gemini.New(cmd.Context(), cfg.Provider())
			if err != nil {
				return err
			}
			service := studio.NewService(editor, cfg.Denylist)

			result, err := service.Generate(cmd.Context(), session)
			if err != nil {
				return fmt.Errorf("%s", studio.Message(err))
			}

			path := outputPath(output, imagePath, result)
			if err := os.WriteFile(path, result.Data, 0644); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}

			slog.Info("Result written", "path", path, "mime_type", result.MIMEType, "bytes", len(result.Data))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to the PNG or JPEG photo (required)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Style change to apply")
	cmd.Flags().IntVar(&example, "example", 0, "Use the Nth canned example prompt instead of --prompt (see 'stylist examples')")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <image>-styled.<ext>)")

	_ = cmd.MarkFlagRequired("image")
	cmd.MarkFlagsMutuallyExclusive("prompt", "example")
	return cmd
}

// outputPath picks where to write the result. The extension always follows
// the returned MIME type.
func outputPath(output, imagePath string, result images.Asset) string {
	ext := result.Extension()
	if output == "" {
		base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
		return base + "-styled" + ext
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + ext
}
