// Package main writes the OpenAPI document of the resumeai API. It registers
// the shared route definitions with stub handlers, so no database, object
// storage or provider access is needed.
//
// Usage:
//
//	go run ./cmd/resumeai-openapi > openapi.json
//	go run ./cmd/resumeai-openapi -yaml > openapi.yaml
//	go run ./cmd/resumeai-openapi -output openapi.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/resumeai/internal/http/routes"
	"github.com/jmylchreest/resumeai/internal/version"
)

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := flag.String("base-url", "http://localhost:8080", "Base URL for the API server")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().Short())
		return
	}

	api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(*baseURL))
	routes.Register(api, routes.StubHandlers())
	spec := api.OpenAPI()

	var data []byte
	var err error
	if *outputYAML {
		data, err = yaml.Marshal(spec)
	} else {
		data, err = json.MarshalIndent(spec, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling OpenAPI document: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OpenAPI document written to %s\n", *outputFile)
		return
	}
	fmt.Print(string(data))
}
