package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:], ".env")
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "usage: catbattle [-addr :8080] [-db catbattle.db] [-tick 50ms] [-log file] [-admin-hash hash]")
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if cfg.HashPassword != "" {
		hash, err := HashPassword(cfg.HashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}
	if cfg.SchemaOut != "" {
		if err := WriteProtocolSchema(cfg.SchemaOut); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer SyncLogger()

	var db *DB
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			Log.Fatalw("open database", "path", cfg.DBPath, "err", err)
		}
		defer db.Close()
	}

	var events EventSink = NopSink{}
	var journal *Journal
	if db != nil {
		journal = NewJournal(db)
		events = journal
	}

	rooms := NewRoomManager(DefaultTuning(), cfg.Tick, events)
	hub := NewHub(rooms)
	go hub.Run()

	mux := SetupRoutes(&Server{
		Hub:       hub,
		Admin:     &Admin{auth: NewAuth(db, cfg.AdminHash), rooms: rooms, journal: journal, hub: hub},
		ClientDir: cfg.ClientDir,
		PublicURL: cfg.PublicURL,
	})

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		Log.Infow("server starting", "addr", cfg.Addr, "tick", cfg.Tick, "db", cfg.DBPath)
		if cfg.ClientDir != "" {
			Log.Infow("serving client files", "dir", cfg.ClientDir)
		}
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			Log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	<-stop
	Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
	rooms.StopAll()
	if journal != nil {
		journal.Stop()
	}
}
