package main

import (
	"context"
	"os"

	"github.com/bazumi/promobot/core/cmd"
	"github.com/bazumi/promobot/internal/app"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		Bootstrap: func(ctx context.Context, configPath string) (cmd.App, error) {
			return app.Bootstrap(ctx, configPath)
		},
	})
	if err != nil {
		os.Exit(1)
	}
}
