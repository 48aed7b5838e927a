package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/filmrec/filmrec/internal/config"
	"github.com/filmrec/filmrec/internal/database"
	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/importers"
	"github.com/filmrec/filmrec/internal/letterboxd"
)

// LetterboxdImportCommand imports a Letterboxd data export (reviews.csv,
// watchlist.csv, likes/films.csv) into the local database for one user.
type LetterboxdImportCommand struct {
	ReviewsPath   string
	WatchlistPath string
	LikesPath     string
	Username      string
	DatabasePath  string
	Verbose       bool
}

func NewLetterboxdImportCommand() *LetterboxdImportCommand {
	return &LetterboxdImportCommand{}
}

func (cmd *LetterboxdImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("letterboxd-import", flag.ExitOnError)

	fs.StringVar(&cmd.ReviewsPath, "reviews", "", "Path to reviews.csv from the Letterboxd export")
	fs.StringVar(&cmd.WatchlistPath, "watchlist", "", "Path to watchlist.csv from the Letterboxd export")
	fs.StringVar(&cmd.LikesPath, "likes", "", "Path to likes/films.csv from the Letterboxd export")
	fs.StringVar(&cmd.Username, "user", "", "Username to attach the imported films to (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s letterboxd-import -user <username> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a Letterboxd data export into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Download the export from letterboxd.com/settings/data and point the\n")
		fmt.Fprintf(os.Stderr, "flags at the unpacked CSV files. At least one file is required.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import watches with ratings and the watchlist:\n")
		fmt.Fprintf(os.Stderr, "  %s letterboxd-import -user alice -reviews reviews.csv -watchlist watchlist.csv\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import liked films only:\n")
		fmt.Fprintf(os.Stderr, "  %s letterboxd-import -user alice -likes likes/films.csv\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -user not provided")
	}
	if cmd.ReviewsPath == "" && cmd.WatchlistPath == "" && cmd.LikesPath == "" {
		return fmt.Errorf("at least one of -reviews, -watchlist or -likes is required")
	}

	return nil
}

func (cmd *LetterboxdImportCommand) Run() error {
	fmt.Println("Letterboxd Import")
	fmt.Println("=================")

	src := importers.Sources{}
	var allWarnings []string

	parse := func(label, path string) ([]letterboxd.Row, error) {
		if path == "" {
			return nil, nil
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s file: %w", label, err)
		}
		defer file.Close()

		rows, warnings, err := letterboxd.ParseExportCSV(file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s file: %w", label, err)
		}
		for _, w := range warnings {
			allWarnings = append(allWarnings, fmt.Sprintf("%s: %s", label, w))
		}
		fmt.Printf("%s: %d rows\n", label, len(rows))
		return rows, nil
	}

	var err error
	if src.Reviews, err = parse("reviews", cmd.ReviewsPath); err != nil {
		return err
	}
	if src.Watchlist, err = parse("watchlist", cmd.WatchlistPath); err != nil {
		return err
	}
	if src.Likes, err = parse("likes", cmd.LikesPath); err != nil {
		return err
	}

	if cmd.Verbose {
		for _, w := range allWarnings {
			fmt.Printf("  [SKIPPED] %s\n", w)
		}
	} else if len(allWarnings) > 0 {
		fmt.Printf("%d rows skipped (use -verbose for details)\n", len(allWarnings))
	}

	if src.Empty() {
		fmt.Println("No importable rows found")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	userRepo := users.NewRepository(db.DB)
	user, err := userRepo.GetUserByUsername(cmd.Username)
	if err != nil {
		return fmt.Errorf("user %q not found: %w", cmd.Username, err)
	}

	importer := importers.NewImporter(db.DB)
	counters, err := importer.Run(user.ID, src)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Movies created:        %d\n", counters.MoviesCreated)
	fmt.Printf("Movies matched:        %d\n", counters.MoviesMatched)
	fmt.Printf("Relationships created: %d\n", counters.RelationshipsCreated)
	fmt.Printf("Relationships updated: %d\n", counters.RelationshipsUpdated)

	fmt.Println("\nImport complete!")
	return nil
}
