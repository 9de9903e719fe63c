package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"labparse/internal/export"
	"labparse/internal/service"
	s3storage "labparse/internal/storage/s3"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	var adapter, format, output string

	cmd := &cobra.Command{
		Use:   "batch <file|dir|s3://bucket/prefix>...",
		Short: "Parse many reports concurrently",
		Long: "Parse every listed file, every regular file in listed directories and\n" +
			"every object under listed S3 prefixes. Per-document failures are reported\n" +
			"in the output and do not stop the batch.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, output); err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runBatch(cmd, cliCtx, args, adapter, format, output)
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "force an adapter for every document")
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "output format: json|csv|xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runBatch(cmd *cobra.Command, cliCtx *CLIContext, sources []string, adapter, format, output string) error {
	ctx := cmd.Context()
	docs, err := collectDocuments(ctx, cliCtx, sources)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found")
	}

	res, err := cliCtx.App.BatchService.Run(ctx, docs, adapter)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		err = writeJSON(w, res)
	} else {
		sheet := make([]export.Document, 0, len(res.Items))
		for _, item := range res.Items {
			sheet = append(sheet, export.Document{Name: item.Filename, Result: item.Result})
		}
		err = writeSheet(w, format, sheet, cliCtx.App.Config.Parser.ReviewThreshold, output != "" && output != "-")
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d documents: %d succeeded, %d failed, %d need review\n",
		len(res.Items), res.Succeeded, res.Failed, res.NeedsReview)
	return nil
}

// collectDocuments expands sources into lazily loaded batch documents.
func collectDocuments(ctx context.Context, cliCtx *CLIContext, sources []string) ([]service.BatchDocument, error) {
	var docs []service.BatchDocument
	for _, src := range sources {
		if s3storage.IsURI(src) {
			objs, err := s3Documents(ctx, cliCtx, src)
			if err != nil {
				return nil, err
			}
			docs = append(docs, objs...)
			continue
		}

		info, err := os.Stat(src)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			docs = append(docs, fileDocument(src))
			continue
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				docs = append(docs, fileDocument(filepath.Join(src, e.Name())))
			}
		}
	}
	return docs, nil
}

func fileDocument(p string) service.BatchDocument {
	return service.BatchDocument{
		Filename: filepath.Base(p),
		Load: func(context.Context) ([]byte, error) {
			return os.ReadFile(p)
		},
	}
}

func s3Documents(ctx context.Context, cliCtx *CLIContext, uri string) ([]service.BatchDocument, error) {
	storage := cliCtx.App.Storage
	if storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	bucket, prefix, err := s3storage.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	keys, err := storage.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", uri, err)
	}
	sort.Strings(keys)

	docs := make([]service.BatchDocument, 0, len(keys))
	for _, key := range keys {
		docs = append(docs, service.BatchDocument{
			Filename: path.Base(key),
			Load: func(ctx context.Context) ([]byte, error) {
				return storage.Download(ctx, bucket, key)
			},
		})
	}
	return docs, nil
}
