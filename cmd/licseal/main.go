package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"licseal/internal/canonical"
	"licseal/internal/config"
	"licseal/internal/infrastructure"
	"licseal/internal/license"
)

func main() {
	configPath := flag.String("config", "licseal.yaml", "configuration file")
	schemaPath := flag.String("schema", "", "schema definition file (overrides config)")
	buildPath := flag.String("build", "", "raw input JSON: build a license document and print it")
	validatePath := flag.String("in", "", "license document JSON to validate against the schema")
	workDir := flag.String("workdir", "", "working directory for relative file paths (overrides config)")
	printSchema := flag.Bool("print-schema", false, "print the JSON Schema of the schema definition format and exit")
	flag.Parse()

	if err := run(*configPath, *schemaPath, *buildPath, *validatePath, *workDir, *printSchema); err != nil {
		slog.Error("licseal failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(configPath, schemaPath, buildPath, validatePath, workDir string, printSchema bool) error {
	if printSchema {
		data, err := json.MarshalIndent(license.DefinitionJSONSchema(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	ctx := context.Background()
	providers, err := infrastructure.InitializeOTel(ctx, io.Discard, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("otel shutdown", slog.String("error", err.Error()))
		}
	}()

	engine := canonical.NewEngine(logger)
	if cfg.Paths.CanonicalizerMap != "" {
		if err := engine.LoadExtensionMap(cfg.Paths.CanonicalizerMap); err != nil {
			return err
		}
	}
	manager := license.NewManager(engine, logger)

	if schemaPath == "" {
		schemaPath = cfg.Paths.SchemaFile
	}
	schema, err := license.LoadSchema(schemaPath)
	if err != nil {
		return err
	}
	logger.Info("schema loaded",
		slog.String("schema", schema.Name()),
		slog.Int("fields", len(schema.Fields())))

	if workDir == "" {
		workDir = cfg.Paths.WorkDir
	}

	switch {
	case buildPath != "":
		return buildLicense(ctx, manager, schema, buildPath, workDir)
	case validatePath != "":
		return validateLicense(ctx, manager, schema, validatePath)
	default:
		return fmt.Errorf("nothing to do: pass -build or -in")
	}
}

func buildLicense(ctx context.Context, manager *license.Manager, schema *license.Schema, inputPath, workDir string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input %s: %w", inputPath, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse input %s: %w", inputPath, err)
	}

	doc, err := manager.BuildDocument(ctx, schema, raw, license.BuildOptions{WorkDir: workDir})
	if err != nil {
		return err
	}
	if err := manager.ValidateDocumentOrError(ctx, doc, schema); err != nil {
		return err
	}

	encoded, err := manager.EncodeDocument(doc)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func validateLicense(ctx context.Context, manager *license.Manager, schema *license.Schema, licensePath string) error {
	data, err := os.ReadFile(licensePath)
	if err != nil {
		return fmt.Errorf("read license %s: %w", licensePath, err)
	}

	doc, err := manager.DecodeDocument(data)
	if err != nil {
		return err
	}
	if err := doc.EnsureMandatory(); err != nil {
		return err
	}

	ok, problems := manager.ValidateDocument(ctx, doc, schema)
	if !ok {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "problem: %s\n", p)
		}
		return fmt.Errorf("license does not conform to schema %q (%d problems)", schema.Name(), len(problems))
	}

	fmt.Printf("license %s conforms to schema %q\n", licensePath, schema.Name())
	return nil
}
