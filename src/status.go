package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Small HTTP server reporting gateway health and
 *		pipeline counters.
 *
 *		GET /health	{"status":"ok","uplink_connected":true,"queue":0}
 *		GET /stats	All counters from Stats.
 *		GET /heard	Stations heard over the radio, most recent first.
 *		GET /heard/{callsign}
 *				One station, and whether it counts as local:
 *				heard within LOCAL_TIME with LOCAL_HOPS or fewer.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const STATUS_SHUTDOWN_TIMEOUT = 5 * time.Second

type healthResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Version         string `json:"version"`
	UplinkConnected bool   `json:"uplink_connected"`
	Queue           int    `json:"queue"`
	DirectCount     int    `json:"dir_cnt"` // Heard direct in the last LOCAL_TIME.
	LocalCount      int    `json:"loc_cnt"`
	RFCount         int    `json:"rf_cnt"`
}

type heardResponse struct {
	HeardStation
	Local bool `json:"local"`
}

// Stations heard within this time, with at most LOCAL_HOPS, are local.
const (
	LOCAL_TIME = 30 * time.Minute
	LOCAL_HOPS = 2
)

type StatusServer struct {
	addr  string
	stats *Stats
	queue *UplinkQueue
	igate *IGateClient
	heard *HeardList
}

// igate and heard may be nil.
func NewStatusServer(addr string, stats *Stats, queue *UplinkQueue, igate *IGateClient, heard *HeardList) *StatusServer {
	if heard == nil {
		heard = NewHeardList()
	}
	return &StatusServer{addr: addr, stats: stats, queue: queue, igate: igate, heard: heard}
}

func (s *StatusServer) Handler() http.Handler {
	var r = chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		var now = time.Now()
		writeJSON(w, healthResponse{
			Status:          "ok",
			Service:         SOFTWARE_NAME,
			Version:         Version(),
			UplinkConnected: s.igate != nil && s.igate.Connected(),
			Queue:           s.queue.Len(),
			DirectCount:     s.heard.Count(0, LOCAL_TIME, now),
			LocalCount:      s.heard.Count(LOCAL_HOPS, LOCAL_TIME, now),
			RFCount:         s.heard.Count(AX25_MAX_REPEATERS, LOCAL_TIME, now),
		})
	})

	r.Get("/heard", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.heard.List())
	})

	r.Get("/heard/{callsign}", func(w http.ResponseWriter, req *http.Request) {
		var callsign = strings.ToUpper(chi.URLParam(req, "callsign"))
		var station, ok = s.heard.Get(callsign)
		if !ok {
			http.Error(w, "not heard", http.StatusNotFound)
			return
		}
		writeJSON(w, heardResponse{
			HeardStation: station,
			Local:        s.heard.WasRecentlyNearby(callsign, LOCAL_HOPS, LOCAL_TIME, time.Now()),
		})
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.stats.Snapshot())
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		stageLogger("status").Debug("Error writing response", "err", err)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     Serve until ctx is cancelled.
 *
 * Returns:	Listen errors.  A status server that can't start is
 *		reported but is no reason to stop gating, so the caller
 *		may choose to only log it.
 *
 *--------------------------------------------------------------------*/

func (s *StatusServer) Run(ctx context.Context) error {
	var ln, err = (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr) //nolint:exhaustruct
	if err != nil {
		return err
	}

	var srv = &http.Server{ //nolint:exhaustruct
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stageLogger("status").Info("Status server listening", "addr", ln.Addr().String())

	var done = make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		var shutdownCtx, cancel = context.WithTimeout(context.Background(), STATUS_SHUTDOWN_TIMEOUT)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck,contextcheck
	}()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
