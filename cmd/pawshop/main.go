package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pawshop/pawshop/config"
	"github.com/pawshop/pawshop/internal/adminapi"
	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/shopapi"
	"github.com/pawshop/pawshop/internal/webserver"
)

var (
	configFile = flag.String("c", "/etc/pawshop.yml", "config file path")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("pawshop", version)
		return
	}

	cfg := config.LoadConfig(*configFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()
	shopapi.InitRouter()

	errc := make(chan error, 1)
	go func() {
		errc <- webserver.Listen()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	case s := <-sig:
		zap.S().Infof("received signal %s, shutting down", s)
		webserver.Shutdown()
	}
}
