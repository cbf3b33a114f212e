package main

import (
	"citystate/internal/di"
	"citystate/internal/structures"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config/config.yml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to the console as well")
	flag.StringVar(&flags.LaunchURL, "launch", "", "URL the page was opened with, read for a referral code")
	flag.Parse()

	// A missing .env is normal; CITY_* variables may come from the shell.
	_ = godotenv.Load()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "citystate: %s\n", err)
		os.Exit(1)
	}
}
