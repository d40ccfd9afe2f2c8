package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"voxelscript.dev/internal/api"
	"voxelscript.dev/internal/persistence/indexdb"
	persistlog "voxelscript.dev/internal/persistence/log"
	"voxelscript.dev/internal/sim/tuning"
	"voxelscript.dev/internal/sim/world"
	"voxelscript.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the SQLite tick index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	w, err := world.New(world.ConfigFromTuning(*worldID, *seed, tune), logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	w.AddTickSink(tickLog)

	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.RecordTuning(tune); err != nil {
			logger.Printf("index: record tuning: %v", err)
		}
		w.AddTickSink(idx)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	registry := api.NewRegistry()
	wsServer := ws.NewServer(w, registry, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()

		fmt.Fprintf(rw, "# HELP voxelscript_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE voxelscript_world_tick gauge\n")
		fmt.Fprintf(rw, "voxelscript_world_tick{world=%q} %d\n", *worldID, m.Tick)

		fmt.Fprintf(rw, "# HELP voxelscript_world_computers Attached computer contexts.\n")
		fmt.Fprintf(rw, "# TYPE voxelscript_world_computers gauge\n")
		fmt.Fprintf(rw, "voxelscript_world_computers{world=%q} %d\n", *worldID, m.Computers)

		fmt.Fprintf(rw, "# HELP voxelscript_world_pending_commands Commands queued for the next tick.\n")
		fmt.Fprintf(rw, "# TYPE voxelscript_world_pending_commands gauge\n")
		fmt.Fprintf(rw, "voxelscript_world_pending_commands{world=%q} %d\n", *worldID, m.PendingCommands)

		fmt.Fprintf(rw, "# HELP voxelscript_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE voxelscript_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "voxelscript_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "join", m.JoinQueue)
		fmt.Fprintf(rw, "voxelscript_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "leave", m.LeaveQueue)
	})
	mux.HandleFunc("/v1/ws", wsServer.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Printf("world=%s seed=%d tick_rate=%dHz listening on %s", *worldID, *seed, tune.TickRateHz, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
