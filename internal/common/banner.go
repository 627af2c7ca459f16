package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	version := GetVersion()
	build := GetBuild()
	commit := GetGitCommit()
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
	storage := config.Storage.Backend
	if config.Storage.Backend == "surrealdb" {
		storage += " (" + config.Storage.Address + ")"
	} else {
		storage += " (" + config.Storage.DataPath + ")"
	}

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 64
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		`  ___          _         __     _ _          _   ___ `,
		` | _ \___ _ _ | |_ __ _ / _|___| (_)___     /_\ |_ _|`,
		` |  _/ _ \ '_||  _/ _' |  _/ _ \ | / _ \   / _ \ | | `,
		` |_| \___/_|   \__\__,_|_| \___/_|_\___/  /_/ \_\___|`,
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s  Portfolio advice for retail investors%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", version},
		{"Build", build},
		{"Commit", commit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL},
		{"Storage", storage},
		{"Quote cache", config.Cache.Backend},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", version).
		Str("build", build).
		Str("commit", commit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL).
		Str("storage", storage).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  PORTAFOLIO AI: SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
