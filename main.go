package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/api"
	"github.com/a-bouts/isoroute/land"
	"github.com/a-bouts/isoroute/polar"
	"github.com/a-bouts/isoroute/wind"
	"github.com/a-bouts/isoroute/xmpp"
)

type options struct {
	listen     string
	gribDir    string
	polarDir   string
	landFile   string
	refresh    int
	windCache  int
	debug      bool
	logFormat  string
	cpuprofile bool
	xmpp       xmpp.Config
}

func parseFlags(args []string) (options, error) {
	var o options

	fs := flag.NewFlagSet("isoroute", flag.ContinueOnError)
	fs.StringVar(&o.listen, "listen", ":8888", "listen address")
	fs.StringVar(&o.gribDir, "grib-dir", "grib-data", "directory of the GRIB2 forecast files")
	fs.StringVar(&o.polarDir, "polar-dir", "polars", "directory of the .pol and .json boat polars")
	fs.StringVar(&o.landFile, "land-file", "", "land mask file, none when empty")
	fs.IntVar(&o.refresh, "refresh", 15, "forecast directory refresh period in seconds")
	fs.IntVar(&o.windCache, "wind-cache", 500000, "wind cache size, 0 to disable")
	fs.BoolVar(&o.debug, "debug", false, "debug logs")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format, text or json")
	fs.BoolVar(&o.cpuprofile, "cpuprofile", false, "profile every route request")
	fs.StringVar(&o.xmpp.Host, "xmpp-host", "", "")
	fs.StringVar(&o.xmpp.Jid, "xmpp-jid", "", "")
	fs.StringVar(&o.xmpp.Password, "xmpp-password", "", "")
	fs.StringVar(&o.xmpp.To, "xmpp-to", "", "")
	fs.String("config", "", "config file")

	err := ff.Parse(fs, args,
		ff.WithEnvVarNoPrefix(),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		return o, err
	}
	if o.refresh <= 0 {
		return o, fmt.Errorf("non-positive refresh period %d", o.refresh)
	}
	return o, nil
}

// purger is the wind provider used by the server, the cache when enabled
type purger interface {
	wind.Provider
	Purge()
}

type uncached struct {
	wind.Provider
}

func (uncached) Purge() {}

func windProvider(forecast *wind.Forecast, size int) purger {
	if size <= 0 {
		return uncached{forecast}
	}
	return wind.NewCache(forecast, size, time.Hour)
}

func updateWinds(forecast *wind.Forecast, provider purger) {
	changed, err := forecast.Merge()
	if err != nil {
		log.WithError(err).Error("Update winds failed")
		return
	}
	if changed {
		provider.Purge()
		log.Infof("Winds updated, %d forecasts", len(forecast.Times()))
	}
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := initLogger(o.debug, o.logFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	polars := polar.NewLibrary(o.polarDir)

	log.Info("Load winds")
	forecast := wind.NewForecast(o.gribDir)
	provider := windProvider(forecast, o.windCache)
	updateWinds(forecast, provider)

	var l *land.Land
	if o.landFile != "" {
		log.Info("Load lands")
		if l, err = land.Load(o.landFile); err != nil {
			log.WithError(err).Fatal("Load lands failed")
		}
	}

	var notifier api.Notifier
	if o.xmpp.Enabled() {
		x, err := xmpp.New(o.xmpp)
		if err != nil {
			log.WithError(err).Fatal("Bad xmpp config")
		}
		notifier = x
	}

	s := gocron.NewScheduler()
	s.Every(uint64(o.refresh)).Seconds().Do(updateWinds, forecast, provider)
	go s.Start()

	router := api.InitServer(o.cpuprofile, polars, provider, l, notifier)
	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(o.debug))(
		handlers.CombinedLoggingHandler(log.StandardLogger().Writer(),
			handlers.CORS(
				handlers.AllowedOrigins([]string{"*"}),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"Content-Type"}),
			)(router)))

	log.Infof("Start server on %s", o.listen)
	log.Fatal(http.ListenAndServe(o.listen, handler))
}
