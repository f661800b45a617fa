package main

import (
	"context"
	"os"

	"github.com/matthope/webhook-push/cmd/push"
)

func main() {
	ctx := context.Background()

	if err := push.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
