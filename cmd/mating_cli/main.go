package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"genefy/internal/catalog"
	"genefy/internal/domain"
	"genefy/internal/service"
)

func main() {
	_ = godotenv.Load()

	var (
		catalogPath    = flag.String("catalog", os.Getenv("CATALOG_PATH"), "ruta a un catálogo TOML (vacío = catálogo incorporado)")
		femalePath     = flag.String("female", "", "archivo JSON de la hembra")
		sirePath       = flag.String("sire", "", "archivo JSON del toro")
		prioritiesPath = flag.String("priorities", "", "archivo JSON de prioridades (opcional)")
		verbose        = flag.Bool("v", false, "log de depuración")
	)
	flag.Parse()

	if *femalePath == "" || *sirePath == "" {
		fmt.Fprintln(os.Stderr, "uso: mating_cli -female hembra.json -sire toro.json [-priorities p.json] [-catalog c.toml]")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(os.Stdout, logger, *catalogPath, *femalePath, *sirePath, *prioritiesPath); err != nil {
		log.Fatal(err)
	}
}

func run(out io.Writer, logger *zap.Logger, catalogPath, femalePath, sirePath, prioritiesPath string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	engine, err := service.NewMatingEngine(cat, logger)
	if err != nil {
		return err
	}
	builder := engine.SnapshotBuilder()

	female, femaleErrs, err := loadAnimal(builder, femalePath, domain.SexFemale)
	if err != nil {
		return err
	}
	sire, sireErrs, err := loadAnimal(builder, sirePath, domain.SexSire)
	if err != nil {
		return err
	}

	var priorities domain.Priorities
	if prioritiesPath != "" {
		if err := readJSON(prioritiesPath, &priorities); err != nil {
			return err
		}
	}

	result := engine.Recommend(female, sire, priorities)
	result.FieldErrors = append(append(femaleErrs, sireErrs...), result.FieldErrors...)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadAnimal(builder *service.SnapshotBuilder, path string, sex domain.Sex) (domain.AnimalTraitSnapshot, []domain.FieldError, error) {
	var raw domain.RawAnimal
	if err := readJSON(path, &raw); err != nil {
		return domain.AnimalTraitSnapshot{}, nil, err
	}
	raw.Sex = sex
	if raw.ID == "" {
		raw.ID = string(sex)
	}
	snap, errs := builder.Build(raw)
	return snap, errs, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
