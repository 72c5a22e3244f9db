package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Temutjin2k/campus-ride/config"
	"github.com/Temutjin2k/campus-ride/internal/adapter/postgres"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/configparser"
	pg "github.com/Temutjin2k/campus-ride/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	dir        = flag.String("dir", "migrations", "Directory with *.up.sql / *.down.sql files")
	down       = flag.Bool("down", false, "Apply *.down.sql files in reverse order")
	seed       = flag.Bool("seed", true, "Insert demo drivers after migrating up")
)

func main() {
	flag.Parse()

	ctx := context.Background()

	// -mode is not needed here, so only the YAML/env layer is applied
	cfg := &config.Config{}
	if err := configparser.LoadAndParseYaml(config.ConfigPath(), cfg); err != nil {
		log.Fatal(err)
	}

	client, err := pg.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := migrate(ctx, client.Pool, *dir, *down); err != nil {
		log.Fatal(err)
	}

	if *seed && !*down {
		seedDrivers(client.Pool)
	}
}

func migrate(ctx context.Context, db *pgxpool.Pool, dir string, down bool) error {
	suffix := ".up.sql"
	if down {
		suffix = ".down.sql"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return err
	}
	sort.Strings(files)
	if down {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(sql)) == "" {
			continue
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
		log.Printf("migrate: applied %s", filepath.Base(f))
	}
	return nil
}

func seedDrivers(db *pgxpool.Pool) {
	// short timeout for seed operations
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	drivers := []models.DriverProfile{
		{
			ID:       uuid.MustParse("8f1c2b1e-5a4d-4e0a-9c3b-1d2e3f4a5b6c"),
			Name:     "Aruzhan",
			Rating:   4.9,
			Verified: true,
			Vehicle:  &models.Vehicle{Make: "Toyota", Model: "Camry", Color: "white", Plate: "123ABC02", Seats: 4},
		},
		{
			ID:       uuid.MustParse("2b7d9e40-3c1a-4f6b-8e2d-7a9b0c1d2e3f"),
			Name:     "Daniyar",
			Rating:   4.2,
			Verified: false,
			Vehicle:  &models.Vehicle{Make: "Hyundai", Model: "Elantra", Color: "grey", Seats: 4},
		},
	}

	repo := postgres.NewDriverRepo(db)
	for _, d := range drivers {
		if err := repo.Upsert(ctx, d); err != nil {
			log.Fatalf("seedDrivers: upsert driver %s: %v", d.Name, err)
		}
	}

	log.Printf("seedDrivers: inserted/ensured %d demo drivers", len(drivers))
}
