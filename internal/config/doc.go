// Package config provides centralized configuration management for the CRPD
// dashboard. It loads settings from the environment and an optional YAML file,
// validates them, and resolves file system locations.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (config.yaml, configs/config.yaml or CRPD_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CRPD_<SECTION>_<FIELD>:
//
//	CRPD_SERVER_PORT=8080
//	CRPD_DATA_WORKBOOK_PATH="CRPD Final All Data.xlsx"
//	CRPD_DATA_SHEET_NAME="Final Data"
//	CRPD_AUTH_USERNAME=mohr
//	CRPD_AUTH_PASSWORD_HASH='$2a$10$...'
//	CRPD_LOGGING_LEVEL=debug
//
// # Path Management
//
// Relative workbook paths are resolved through the Paths type, which looks in
// the working directory first and then next to the executable:
//
//	paths, _ := config.GetPaths()
//	workbook := paths.ResolveWorkbook(cfg.Data.WorkbookPath)
package config
