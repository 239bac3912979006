package main

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"motiv8/internal/adapter/repository"
	domainrepo "motiv8/internal/domain/repository"
	"motiv8/internal/infrastructure/storage"
	"motiv8/internal/usecase"
	"motiv8/pkg/config"
	"motiv8/pkg/logger"
)

var (
	catalogFile   string
	catalogDryRun bool
	exportBucket  string
	exportObject  string
)

// catalogCmd groups mission catalog maintenance
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the mission catalog",
	Long: `Manage the mission catalog stored in Firestore.

Available subcommands:
  import - Validate a YAML/JSON file and upsert every template
  export - Write the current catalog as YAML to a Cloud Storage object`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate and bulk-upsert mission templates",
	Long: `Reads a YAML or JSON catalog (a list, or a document with a "missions" key),
validates every entry and writes them all in one bulk write. Nothing is
written if any entry is invalid. --dry-run stops after validation and does
not contact Firestore.`,
	Example: `  motiv8ctl catalog import --file missions.yaml --dry-run`,
	RunE:    runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the catalog to Cloud Storage",
	Example: `  motiv8ctl catalog export --bucket motiv8-seeds --object catalog.yaml`,
	RunE:    runCatalogExport,
}

func init() {
	catalogImportCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog file (YAML or JSON)")
	catalogImportCmd.Flags().BoolVar(&catalogDryRun, "dry-run", false, "validate without writing")
	_ = catalogImportCmd.MarkFlagRequired("file")

	catalogExportCmd.Flags().StringVar(&exportBucket, "bucket", "", "destination bucket")
	catalogExportCmd.Flags().StringVar(&exportObject, "object", "catalog.yaml", "destination object name")
	_ = catalogExportCmd.MarkFlagRequired("bucket")

	catalogCmd.AddCommand(catalogImportCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

// openCatalog connects to the Firestore catalog described by the environment.
func openCatalog(ctx context.Context) (domainrepo.MissionCatalogRepository, []option.ClientOption, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.FirebaseProject == "" {
		return nil, nil, nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountPath))
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to firestore: %w", err)
	}

	return repository.NewFirestoreMissionCatalogRepository(client), opts, func() { _ = client.Close() }, nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", catalogFile, err)
	}

	// A dry run only parses and validates, so an in-memory catalog is enough.
	var catalogRepo domainrepo.MissionCatalogRepository = repository.NewMemoryStore().Catalog()
	if !catalogDryRun {
		repo, _, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		catalogRepo = repo
	}

	result, err := usecase.NewCatalogUseCase(catalogRepo, logger.Named("motiv8ctl")).ImportCatalog(ctx, data, catalogDryRun)
	if err != nil {
		return err
	}

	verb := "imported"
	if result.DryRun {
		verb = "validated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d missions\n", verb, result.Count)
	for _, id := range result.IDs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
	}
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	catalogRepo, opts, closeFn, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	templates, err := usecase.NewCatalogUseCase(catalogRepo, logger.Named("motiv8ctl")).ListCatalog(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(map[string]interface{}{"missions": templates})
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	storageClient, err := storage.NewCloudStorageClient(ctx, exportBucket, opts...)
	if err != nil {
		return err
	}
	defer storageClient.Close()

	uri, err := storageClient.WriteObject(ctx, exportObject, "application/yaml", data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d missions to %s\n", len(templates), uri)
	return nil
}
