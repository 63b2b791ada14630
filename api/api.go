package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/a-bouts/isoroute/api/model"
	"github.com/a-bouts/isoroute/land"
	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/polar"
	"github.com/a-bouts/isoroute/route"
	"github.com/a-bouts/isoroute/wind"
)

// Notifier receives a summary of every route reaching its destination.
type Notifier interface {
	Send(message string) error
}

type server struct {
	cpuprofile bool
	profiling  *sync.Mutex
	polars     *polar.Library
	wind       wind.Provider
	land       *land.Land
	notifier   Notifier
}

// InitServer builds the router. l and n may be nil.
func InitServer(cpuprofile bool, polars *polar.Library, w wind.Provider, l *land.Land, n Notifier) *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	s := server{
		cpuprofile: cpuprofile,
		profiling:  &sync.Mutex{},
		polars:     polars,
		wind:       w,
		land:       l,
		notifier:   n,
	}

	router.HandleFunc("/route/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/route/api/v1").Subrouter()
	apiV1.HandleFunc("/boats", s.boats).Methods(http.MethodGet)
	apiV1.HandleFunc("/algorithms", s.algorithms).Methods(http.MethodGet)
	apiV1.HandleFunc("/route", s.route).Methods(http.MethodPost)
	apiV1.HandleFunc("/compare", s.compare).Methods(http.MethodPost)
	apiV1.HandleFunc("/sneak", s.sneak).Methods(http.MethodPost)
	apiV1.HandleFunc("/wind/{lat}/{lon}", s.windAt).Methods(http.MethodGet)

	return router
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, route.ErrInvalidRequest),
		errors.Is(err, polar.ErrUnknownBoat),
		errors.Is(err, polar.ErrInvalidPolarData):
		status = http.StatusBadRequest
	case errors.Is(err, wind.ErrNoForecastData):
		status = http.StatusNotFound
	}
	writeJSON(w, status, model.Error{Error: err.Error()})
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	writeJSON(w, http.StatusOK, health{Status: "Ok"})
}

func (s *server) boats(w http.ResponseWriter, r *http.Request) {
	models, err := s.polars.Models()
	if err != nil {
		log.WithError(err).Error("Listing boats failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *server) algorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, route.Strategies())
}

func requestLogger(req *http.Request, action string) *log.Entry {
	fields := log.Fields{
		"action": action,
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	return log.WithFields(fields)
}

// request builds the routing request of a boat and the marks to sail.
func (s *server) request(r model.Route, boat string) (route.Request, []latlon.LatLon, error) {
	p, err := s.polars.Resolve(boat)
	if err != nil {
		return route.Request{}, nil, err
	}
	cfg, err := r.Params.Config()
	if err != nil {
		return route.Request{}, nil, err
	}
	marks, err := r.Marks()
	if err != nil {
		return route.Request{}, nil, err
	}

	var checks []route.Validity
	if s.land != nil {
		checks = append(checks, s.land.Navigable)
	}
	if r.Race != nil {
		checks = append(checks, r.Race.Navigable)
	}
	cfg.Valid = route.All(checks...)

	departure := r.StartTime
	if departure.IsZero() {
		departure = time.Now().UTC()
	}

	return route.Request{
		Origin:    r.Start,
		Departure: departure,
		Polar:     p,
		Wind:      s.wind,
		Config:    cfg,
	}, marks, nil
}

func summary(boat string, res route.CourseResult) string {
	last, _ := res.Route.Last()
	return fmt.Sprintf("%s %s at (%.4f,%.4f) %s after %s, %.1f nm",
		boat, res.Status, last.Latlon.Lat, last.Latlon.Lon, last.Time.Format(time.RFC3339),
		res.Route.Duration.Round(time.Minute), res.Route.Distance/1852.0)
}

func (s *server) notify(boat string, res route.CourseResult) {
	if s.notifier == nil || res.Status != route.Arrived {
		return
	}
	go func() {
		if err := s.notifier.Send(summary(boat, res)); err != nil {
			log.WithError(err).Warn("Route notification failed")
		}
	}()
}

// startProfile profiles a request when profiling is on and no other
// request is being profiled. The returned func stops it.
func (s *server) startProfile() func() {
	if !s.cpuprofile || !s.profiling.TryLock() {
		return func() {}
	}
	p := profile.Start(profile.CPUProfile, profile.Quiet, profile.NoShutdownHook)
	return func() {
		p.Stop()
		s.profiling.Unlock()
	}
}

func (s *server) route(w http.ResponseWriter, req *http.Request) {
	defer s.startProfile()()

	logger := requestLogger(req, "route")

	var r model.Route
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, fmt.Errorf("%w: %v", route.ErrInvalidRequest, err))
		return
	}

	boat := r.BoatModel()
	rr, marks, err := s.request(r, boat)
	if err != nil {
		logger.WithError(err).Warn("Route rejected")
		writeError(w, err)
		return
	}

	logger.Infof("Route '%s' from (%f,%f) at '%s' through %d marks every %s", boat, r.Start.Lat, r.Start.Lon, rr.Departure.Format(time.RFC3339), len(marks), rr.Config.Step)

	start := time.Now()

	res, err := route.RunCourse(req.Context(), r.Algorithm, rr, marks)
	if err != nil {
		logger.WithError(err).Warn("Route failed")
		writeError(w, err)
		return
	}

	delta := time.Now().Sub(start)
	logger.Infof("Route took %s (%s, %d steps)", delta.String(), res.Status, res.Steps)

	s.notify(boat, res)
	writeJSON(w, http.StatusOK, model.NewResult(boat, res))
}

func (s *server) compare(w http.ResponseWriter, req *http.Request) {
	logger := requestLogger(req, "compare")

	var r model.Route
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, fmt.Errorf("%w: %v", route.ErrInvalidRequest, err))
		return
	}
	if len(r.Boats) == 0 {
		writeError(w, fmt.Errorf("%w: no boat to compare", route.ErrInvalidRequest))
		return
	}

	logger.Infof("Compare %s from (%f,%f)", strings.Join(r.Boats, ","), r.Start.Lat, r.Start.Lon)
	start := time.Now()

	results := make([]model.Result, len(r.Boats))
	g, ctx := errgroup.WithContext(req.Context())
	for i, boat := range r.Boats {
		i, boat := i, boat
		g.Go(func() error {
			rr, marks, err := s.request(r, boat)
			if err != nil {
				return err
			}
			res, err := route.RunCourse(ctx, r.Algorithm, rr, marks)
			if err != nil {
				return fmt.Errorf("%s: %w", boat, err)
			}
			results[i] = model.NewResult(boat, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.WithError(err).Warn("Compare failed")
		writeError(w, err)
		return
	}

	logger.Infof("Compare took %s", time.Now().Sub(start).String())
	writeJSON(w, http.StatusOK, results)
}

func (s *server) sneak(w http.ResponseWriter, req *http.Request) {
	logger := requestLogger(req, "sneak")

	var r model.Sneak
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, fmt.Errorf("%w: %v", route.ErrInvalidRequest, err))
		return
	}
	if r.Duration == 0 {
		r.Duration = 12
	}
	if r.Step == 0 {
		r.Step = 1
	}
	if r.Every == 0 {
		r.Every = 5
	}
	if r.StartTime.IsZero() {
		r.StartTime = time.Now().UTC()
	}

	p, err := s.polars.Resolve(r.Boat)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Infof("Sneak '%s' for %.0f hours", r.Boat, r.Duration)
	start := time.Now()

	lines, err := route.EvalSneak(req.Context(), route.SneakRequest{
		Start:     r.Start,
		StartTime: r.StartTime,
		Polar:     p,
		Wind:      s.wind,
		Duration:  time.Duration(r.Duration * float64(time.Hour)),
		Step:      time.Duration(r.Step * float64(time.Hour)),
		Every:     r.Every,
	})
	if err != nil {
		logger.WithError(err).Warn("Sneak failed")
		writeError(w, err)
		return
	}

	logger.Infof("Sneak took %s", time.Now().Sub(start).String())
	writeJSON(w, http.StatusOK, lines)
}

func (s *server) windAt(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad latitude: %v", route.ErrInvalidRequest, err))
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad longitude: %v", route.ErrInvalidRequest, err))
		return
	}

	t := time.Now().UTC()
	if q := r.URL.Query().Get("time"); q != "" {
		if t, err = time.Parse(time.RFC3339, q); err != nil {
			writeError(w, fmt.Errorf("%w: bad time: %v", route.ErrInvalidRequest, err))
			return
		}
	}

	wi, err := s.wind.WindAt(latlon.LatLon{Lat: lat, Lon: lon}, t)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Debugf("Wind %s (%f,%f) : %.1f° %.1f kt", t.Format(time.RFC3339), lat, lon, wi.Direction, wi.Speed)

	writeJSON(w, http.StatusOK, model.Wind{Time: t, Wind: wi.Direction, Speed: wi.Speed})
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
