package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/filmrec/filmrec/internal/config"
	"github.com/filmrec/filmrec/internal/database"
	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/metadata"
)

// EnrichMoviesCommand backfills movie metadata from TMDb for catalog
// entries that are missing it.
type EnrichMoviesCommand struct {
	DatabasePath string
	MovieID      uint
	Limit        int
	Verbose      bool
}

func NewEnrichMoviesCommand() *EnrichMoviesCommand {
	return &EnrichMoviesCommand{}
}

func (cmd *EnrichMoviesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("enrich-movies", flag.ExitOnError)

	var movieID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&movieID, "id", 0, "Enrich a single movie by its ID instead of scanning the catalog")
	fs.IntVar(&cmd.Limit, "limit", 0, "Maximum number of movies to enrich (0 = no limit)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s enrich-movies [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch metadata (overview, runtime, genres, cast) from TMDb for movies\n")
		fmt.Fprintf(os.Stderr, "in the catalog that are missing it.\n\n")
		fmt.Fprintf(os.Stderr, "Requires the TMDB_API_KEY environment variable.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Enrich everything that is missing metadata:\n")
		fmt.Fprintf(os.Stderr, "  TMDB_API_KEY=... %s enrich-movies\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Enrich one movie:\n")
		fmt.Fprintf(os.Stderr, "  TMDB_API_KEY=... %s enrich-movies -id 42\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.MovieID = uint(movieID)

	return nil
}

func (cmd *EnrichMoviesCommand) Run() error {
	fmt.Println("Movie Metadata Enrichment")
	fmt.Println("=========================")

	cfg := config.NewConfig()
	client := metadata.NewTMDBClient(cfg.TMDB)
	if !client.IsConfigured() {
		return fmt.Errorf("TMDB_API_KEY is not set")
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	movieRepo := movies.NewRepository(db.DB)
	enricher := metadata.NewEnricher(client, movieRepo)

	ctx := context.Background()

	if cmd.MovieID != 0 {
		result, err := enricher.EnrichMovie(ctx, cmd.MovieID)
		if err != nil {
			return fmt.Errorf("failed to enrich movie %d: %w", cmd.MovieID, err)
		}
		fmt.Printf("Enriched %q, fields updated: %v\n", result.Movie.Title, result.FieldsUpdated)
		return nil
	}

	fmt.Println("\nScanning catalog for movies missing metadata...")

	result, err := enricher.EnrichAllMissing(ctx, cmd.Limit)
	if err != nil {
		return fmt.Errorf("bulk enrichment failed: %w", err)
	}

	fmt.Println("\n=== Enrichment Summary ===")
	fmt.Printf("Movies scanned:  %d\n", result.TotalMovies)
	fmt.Printf("Movies enriched: %d\n", result.Enriched)
	fmt.Printf("Not on TMDb:     %d\n", result.Skipped)
	fmt.Printf("Failed:          %d\n", result.Failed)

	if cmd.Verbose && len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", e)
		}
	}

	fmt.Println("\nEnrichment complete!")
	return nil
}
