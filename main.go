package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dio.wtf/sixaxis/sixaxis"
	"dio.wtf/sixaxis/sixaxis/log"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	config, err := sixaxis.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(log.ParseLevel(config.LogLevel))

	server := sixaxis.NewServer(config)
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
	defer server.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
