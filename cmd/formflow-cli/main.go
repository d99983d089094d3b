package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/goliatone/go-formflow/internal/prompt"
	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/flowgraph"
	"github.com/goliatone/go-formflow/pkg/openapi"
)

func main() {
	docPath := flag.String("doc", "", "form document path (JSON or YAML)")
	graph := flag.Bool("graph", false, "print the positioned flow graph as JSON")
	cycles := flag.Bool("cycles", false, "print navigation cycle warnings")
	walk := flag.Bool("walk", false, "run the document interactively in the terminal")
	importPath := flag.String("import", "", "OpenAPI document to convert into a form document")
	operation := flag.String("operation", "", "operationId to import (first with a request body if empty)")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(*verbose),
	}))
	ctx := context.Background()

	if *importPath != "" {
		runImport(ctx, logger, *importPath, *operation, *output)
		return
	}

	if *docPath == "" {
		log.Fatalf("missing -doc (or -import)")
	}
	doc := loadDocument(logger, *docPath)

	switch {
	case *graph:
		runGraph(logger, doc, *output)
	case *cycles:
		runCycles(doc)
	case *walk:
		runWalk(ctx, logger, doc)
	default:
		log.Fatalf("pick one of -graph, -cycles, -walk, or -import")
	}
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func loadDocument(logger *slog.Logger, path string) *document.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	doc, err := document.ParseFile(data, path, document.WithLogger(logger))
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	return doc
}

func runGraph(logger *slog.Logger, doc *document.Document, output string) {
	graph := flowgraph.NewBuilder(flowgraph.WithLogger(logger)).Build(doc.Tree)
	writeJSON(graph, output)
}

func runCycles(doc *document.Document) {
	found := flowgraph.DetectCycles(doc.Tree)
	if len(found) == 0 {
		fmt.Println("no navigation cycles")
		return
	}
	for _, cycle := range found {
		fmt.Printf("cycle: %s\n", cycle)
	}
}

func runWalk(ctx context.Context, logger *slog.Logger, doc *document.Document) {
	walker := prompt.NewWalker(doc.Tree, prompt.WithLogger(logger))
	values, err := walker.Run(ctx)
	if err != nil {
		log.Fatalf("walk: %v", err)
	}
	writeJSON(values, "")
}

func runImport(ctx context.Context, logger *slog.Logger, path, operation, output string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	importer := openapi.NewImporter(openapi.WithLogger(logger))
	doc, err := importer.Import(ctx, data, operation)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	writeJSON(doc, output)
}

func writeJSON(value any, output string) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	data = append(data, '\n')
	if output != "" {
		if err := os.WriteFile(output, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", output, err)
		}
		fmt.Printf("written to %s\n", output)
		return
	}
	os.Stdout.Write(data)
}
