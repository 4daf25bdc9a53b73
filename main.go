package main

import (
	"log"
	"log/slog"
	"os"

	"eiractl/cmd"
	"eiractl/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs := config.NewLogging(cnf.LogFile, config.ParseLevel(cnf.LogLevel), os.Stderr)
	slog.SetDefault(logs.Logger())

	err = cmd.Execute(cnf, logs)
	if err != nil {
		slog.Error("Failed to execute command", "error", err)
	}
	logs.Close()
	if err != nil {
		os.Exit(1)
	}
}
