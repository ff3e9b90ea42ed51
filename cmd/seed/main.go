// Command seed loads the question sheet and the site sheet from CSV exports
// into the database. Questions are replaced as a whole; sites are upserted by
// label.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"site-audit-be/internal/config"
	"site-audit-be/internal/repository/unitofwork"
	"site-audit-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	questionsPath := flag.String("questions", "seed/questions.csv", "question sheet export")
	sitesPath := flag.String("sites", "seed/sites.csv", "site sheet export")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	failed := false

	color.Cyan("Seeding question sheet from %s", *questionsPath)
	if n, err := seedQuestions(ctx, factory, *questionsPath); err != nil {
		color.Red("Failed: %v", err)
		failed = true
	} else {
		color.Green("Questions loaded: %d", n)
	}

	color.Cyan("Seeding site sheet from %s", *sitesPath)
	if n, err := seedSites(ctx, factory, *sitesPath, cfg.Audit.ProjectLabelField); err != nil {
		color.Red("Failed: %v", err)
		failed = true
	} else {
		color.Green("Sites upserted: %d", n)
	}

	if failed {
		os.Exit(1)
	}
}

func seedQuestions(ctx context.Context, factory unitofwork.RepositoryFactory, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	questions, skipped, err := ReadQuestions(f)
	if err != nil {
		return 0, err
	}
	for _, line := range skipped {
		color.Yellow("Skipped line %d: no section", line)
	}

	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	repo := uow.QuestionRepository()
	if err := repo.DeleteAll(ctx); err != nil {
		uow.Rollback()
		return 0, err
	}
	if err := repo.CreateBatch(ctx, questions); err != nil {
		uow.Rollback()
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(questions), nil
}

func seedSites(ctx context.Context, factory unitofwork.RepositoryFactory, path, labelField string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sites, err := ReadSites(f, labelField)
	if err != nil {
		return 0, err
	}

	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	repo := uow.SiteRepository()
	for _, site := range sites {
		if err := repo.Upsert(ctx, site); err != nil {
			uow.Rollback()
			return 0, err
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(sites), nil
}
