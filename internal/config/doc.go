// Package config provides configuration management for the sales export processor.
// It handles loading configuration from multiple sources, validation, and resolves
// every input and output path used by a run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority), optionally seeded from a .env file
//  2. A YAML configuration file (vendas.yaml, config.yaml or configs/vendas.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern VENDAS_<SECTION>_<FIELD>:
//
//	VENDAS_INPUT_PATH=VendasOutubro.csv
//	VENDAS_INPUT_ENCODING=cp850
//	VENDAS_INPUT_DELIMITER=;
//	VENDAS_OUTPUT_SUMMARY_PATH=out/vendas_resumo.csv
//	VENDAS_LOGGING_LEVEL=debug
//	VENDAS_TELEMETRY_METRICS_ENABLED=true
//
// # Character Repair Table
//
// The substitutions that undo the export's mis-encoding depend on the code page
// of the ERP that produced the file, so they live in the YAML file rather than
// in code:
//
//	cleaning:
//	  substitutions:
//	    - pattern: "¢"
//	      replacement: "o"
//	    - pattern: "å"
//	      replacement: "a"
//
// Patterns are Go regular expressions applied in the listed order.
//
// # Paths
//
// GetPaths resolves relative file names against the working directory, the
// place the monthly export is dropped and the cleaned tables are picked up.
package config
