package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"labparse/internal/domain"
	"labparse/internal/export"
	"labparse/internal/logging"
	"labparse/internal/service"
	s3storage "labparse/internal/storage/s3"
)

// NewParseCmd creates the parse command.
func NewParseCmd() *cobra.Command {
	var adapter, format, output string

	cmd := &cobra.Command{
		Use:   "parse <file|s3://bucket/key>",
		Short: "Parse one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, output); err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runParse(cmd, cliCtx, args[0], adapter, format, output)
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "force an adapter instead of detecting the format")
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "output format: json|csv|xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runParse(cmd *cobra.Command, cliCtx *CLIContext, source, adapter, format, output string) error {
	ctx := cmd.Context()
	svc := cliCtx.App.ParseService

	var res *domain.ParseResult
	name := filepath.Base(source)
	if s3storage.IsURI(source) {
		bucket, key, err := s3storage.ParseURI(source)
		if err != nil {
			return err
		}
		if res, err = svc.ParseObject(ctx, bucket, key, adapter); err != nil {
			return err
		}
	} else {
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("reading %s: %w", source, err)
		}
		if res, err = svc.Parse(ctx, service.ParseInput{Filename: name, Data: data, Adapter: adapter}); err != nil {
			return err
		}
	}

	cliCtx.Logger.Info("cli.parse.done",
		logging.String("source", source),
		logging.String("adapter", res.ParserUsed),
		logging.Bool("success", res.Success),
		logging.Int("markers", len(res.Markers)),
	)

	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		err = writeJSON(w, res)
	} else {
		docs := []export.Document{{Name: name, Result: res}}
		err = writeSheet(w, format, docs, cliCtx.App.Config.Parser.ReviewThreshold, output != "" && output != "-")
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}
