package main

import (
	"fmt"
	"os"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	a.Log.Info("Server starting", "address", a.Cfg.ListenAddress)
	if err := a.Run(); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
