package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goAMMd/internal/config"
	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	grpcserver "github.com/LeJamon/goAMMd/internal/grpc"
	"github.com/LeJamon/goAMMd/internal/rpc"
	"github.com/LeJamon/goAMMd/internal/storage/database"
	"github.com/LeJamon/goAMMd/internal/storage/history"
	"github.com/LeJamon/goAMMd/internal/storage/ledgerstore"

	// Key-value backends and history drivers register themselves in init.
	_ "github.com/LeJamon/goAMMd/internal/storage/database/leveldb"
	_ "github.com/LeJamon/goAMMd/internal/storage/database/pebble"
	_ "github.com/LeJamon/goAMMd/internal/storage/history/postgres"
	_ "github.com/LeJamon/goAMMd/internal/storage/history/sqlite"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the AMM ledger daemon",
	Long: `Start the goAMMd daemon:
- HTTP JSON-RPC endpoint for submission and queries
- WebSocket endpoint for commands and event subscriptions
- optional gRPC query endpoint
- optional persistent snapshot store and relational event history

This is the default command when no subcommand is given.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.RunE = serverCmd.RunE
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openLedgerStore(cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	hist, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close(context.Background())
	}

	subs := rpc.NewSubscriptionManager()

	svc, err := service.New(service.Config{
		Standalone:  cfg.Standalone,
		Policy:      cfg.PoolPolicy(),
		Genesis:     cfg.Genesis,
		CacheSize:   cfg.Database.CacheSize,
		LedgerStore: store,
		History:     hist,
		Publisher:   rpc.NewPublisher(subs),
	})
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start ledger service: %w", err)
	}

	wsHandler := rpc.NewWebSocketServer(svc, subs)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: rpc.NewServer(svc, cfg.Server.RPCTimeout),
	}
	wsServer := &http.Server{
		Addr:    cfg.WSAddr(),
		Handler: wsHandler,
	}

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(&grpcserver.ServerConfig{
			Address:        cfg.GRPC.Address,
			MaxRecvMsgSize: cfg.GRPC.MaxRecvMsgSize,
			MaxSendMsgSize: cfg.GRPC.MaxSendMsgSize,
		}, svc)
		if err != nil {
			return err
		}
	}

	if !quiet {
		log.Printf("goAMMd starting: standalone=%v policy=%s", cfg.Standalone, cfg.PoolPolicy())
		log.Printf("JSON-RPC on http://%s", cfg.HTTPAddr())
		log.Printf("WebSocket on ws://%s", cfg.WSAddr())
		if grpcSrv != nil {
			log.Printf("gRPC on %s", cfg.GRPC.Address)
		}
		info := svc.GetServerInfo()
		log.Printf("open ledger %d, complete ledgers %s", info.OpenLedgerSeq, info.CompleteLedgers)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := wsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})
	if grpcSrv != nil {
		g.Go(func() error {
			if err := grpcSrv.Start(); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	// Shutdown driver: a signal cancels ctx, a listener failure cancels
	// gctx; either way every server comes down.
	g.Go(func() error {
		<-gctx.Done()

		if !quiet {
			log.Println("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcSrv != nil {
			grpcSrv.Stop()
		}
		wsHandler.Close()

		var errs []error
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("websocket shutdown: %w", err))
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// openLedgerStore opens the configured key-value backend and wraps it in
// a snapshot store. A memory backend returns a nil store; the service
// then keeps ledgers in process only.
func openLedgerStore(cfg *config.Config) (*ledgerstore.Store, func(), error) {
	if !cfg.Database.Persistent() {
		return nil, nil, nil
	}

	manager, err := database.OpenBackend(cfg.Database.Backend, cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend at %s: %w", cfg.Database.Backend, cfg.Database.Path, err)
	}

	db, err := manager.OpenDB("ledgers")
	if err != nil {
		manager.Close()
		return nil, nil, fmt.Errorf("open ledgers database: %w", err)
	}

	compressor := cfg.Database.Compression
	if compressor == "" {
		compressor = "none"
	}
	store, err := ledgerstore.New(db, compressor)
	if err != nil {
		manager.Close()
		return nil, nil, err
	}

	closeStore := func() {
		if err := manager.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}
	return store, closeStore, nil
}

// openHistory connects the relational event history when configured.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	hc, enabled := cfg.HistoryStoreConfig()
	if !enabled {
		return nil, nil
	}

	hist, err := history.Open(hc)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := hist.Open(ctx); err != nil {
		return nil, fmt.Errorf("connect %s history: %w", hc.Driver, err)
	}
	return hist, nil
}
