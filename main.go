package main

import (
	"os"

	"github.com/paramflow/paramflow/cmd"
	log "github.com/paramflow/paramflow/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
