package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/watchroom/server/internal/controller"
	connInmemory "github.com/watchroom/server/internal/repository/connection/inmemory"
	"github.com/watchroom/server/internal/repository/message/buffer"
	messageCassandra "github.com/watchroom/server/internal/repository/message/cassandra"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	sessionInmemory "github.com/watchroom/server/internal/repository/session/inmemory"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/cqlclient"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
)

type AppConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`

	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"-"`

	CassandraHosts       []string `json:"cassandra_hosts"`
	CassandraKeyspace    string   `json:"cassandra_keyspace"`
	CassandraConsistency string   `json:"cassandra_consistency"`

	MessageBufferCapacity int           `json:"message_buffer_capacity"`
	MessageFlushInterval  time.Duration `json:"message_flush_interval"`
	RoomReapInterval      time.Duration `json:"room_reap_interval"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.MessageBufferCapacity < 1 {
		return fmt.Errorf("message buffer capacity must be greater than 0")
	}
	if cfg.MessageFlushInterval <= 0 {
		return fmt.Errorf("message flush interval must be positive")
	}
	if cfg.RoomReapInterval <= 0 {
		return fmt.Errorf("room reap interval must be positive")
	}
	if len(cfg.CassandraHosts) == 0 {
		return fmt.Errorf("at least one cassandra host is required")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	cqlSession, err := cqlclient.NewSession(&cqlclient.Config{
		Hosts:       cfg.CassandraHosts,
		Keyspace:    cfg.CassandraKeyspace,
		Consistency: cfg.CassandraConsistency,
	})
	if err != nil {
		return fmt.Errorf("failed to create cassandra session: %w", err)
	}
	defer cqlSession.Close()

	roomRepo := roomRedis.NewRepo(rc, logger)
	messageRepo := messageCassandra.NewRepo(cqlSession, logger)
	messageBuffer := buffer.New()
	sessionRepo := sessionInmemory.NewRepo(logger)
	connRepo := connInmemory.NewRepo()

	roomService := room.NewService(roomRepo, messageRepo, messageBuffer, sessionRepo, connRepo, logger, &room.Config{
		BufferCapacity: cfg.MessageBufferCapacity,
		FlushInterval:  cfg.MessageFlushInterval,
		ReapInterval:   cfg.RoomReapInterval,
	})
	ctrl := controller.NewController(roomService, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: ctrl.GetMux(),
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		// last chance to persist buffered chat before exit
		for _, roomId := range messageBuffer.RoomIds() {
			if err := roomService.FlushRoom(shutdownCtx, roomId); err != nil {
				logger.ErrorContext(shutdownCtx, "failed to flush message buffer on shutdown", "roomId", roomId, "error", err)
			}
		}

		return nil
	})

	g.Go(func() error {
		if err := roomService.StartFlusher(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := roomService.StartReaper(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
