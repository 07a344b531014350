// Package config provides configuration management for the library engine.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP serve-surface settings (port, API key)
//   - Log: Logging level and format
//   - Steam: installation path, account credentials, and import toggles
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Steam.InstallPath)
package config
