package main

import (
	"fmt"
	"log"
	"os"

	"stocktrader/cmd"
	"stocktrader/internal/util"
)

func main() {
	fmt.Println(os.Getenv("commit_hash"))
	cfg, err := util.LoadConfig("")
	if err != nil {
		log.Fatal(err)
	}
	deps, err := cmd.InitializeDependencies(cfg, true)
	if err != nil {
		log.Fatal(err)
	}
	err = deps.ApiHandler.StartApi(cfg.ApiPort)
	if err != nil {
		log.Fatal(err)
	}
}
