package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"slicefinder/adapters/postgres"
	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Imports run JSON files written by `slicefinder find --json` into the database.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <runs_dir>")
	}

	databaseURL := os.Args[1]
	runsDir := os.Args[2]

	log.Printf("Importing runs from %s", runsDir)

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	repo := postgres.NewSliceRunRepository(db)

	files, err := findRunFiles(runsDir)
	if err != nil {
		log.Fatalf("Failed to find run files: %v", err)
	}
	log.Printf("Found %d run files", len(files))

	imported, skipped := 0, 0
	for _, file := range files {
		run, err := loadRun(file)
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			skipped++
			continue
		}

		if _, err := repo.GetRun(ctx, run.ID); err == nil {
			log.Printf("Run %s already imported, skipping", run.ID)
			skipped++
			continue
		}

		if err := repo.SaveRun(ctx, run); err != nil {
			log.Printf("Failed to import %s: %v", file, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findRunFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadRun(path string) (*slicing.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var run slicing.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	if _, err := core.ParseRunID(run.ID.String()); err != nil {
		return nil, err
	}
	if run.MetricKey == "" {
		return nil, core.NewInvalidInputError("run %s has no metric key", run.ID)
	}
	return &run, nil
}
