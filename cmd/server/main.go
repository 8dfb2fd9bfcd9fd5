package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/conduit/app_setting"
	"github.com/Luismorlan/conduit/auth"
	"github.com/Luismorlan/conduit/engine"
	"github.com/Luismorlan/conduit/engine/modules"
	"github.com/Luismorlan/conduit/server"
	"github.com/Luismorlan/conduit/service"
	"github.com/Luismorlan/conduit/store"
	. "github.com/Luismorlan/conduit/utils"
	"github.com/Luismorlan/conduit/utils/dotenv"
	. "github.com/Luismorlan/conduit/utils/flag"
	. "github.com/Luismorlan/conduit/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const (
	defaultStatsdAddr = "127.0.0.1:8125"
	shutdownTimeout   = 10 * time.Second
)

func init() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func newStore() store.Store {
	if *InMemoryStore {
		Log.Warn("using in-memory store, all data is lost on exit")
		return store.NewMemoryStore()
	}
	db, err := GetDBConnection()
	if err != nil {
		Log.Fatalf("fail to connect to database: %v", err)
	}
	DatabaseSetupAndMigration(db)
	return store.NewGormStore(db)
}

// newViewerCache returns nil when the cache is disabled or redis is
// unreachable; the service then reads viewers from the store.
func newViewerCache(ctx context.Context, setting app_setting.ServerAppSetting) service.ViewerCache {
	if setting.VIEWER_CACHE_TTL_SECOND <= 0 || os.Getenv("REDIS_HOST") == "" {
		return nil
	}
	cache, err := GetRedisViewerCache(ctx, time.Duration(setting.VIEWER_CACHE_TTL_SECOND)*time.Second)
	if err != nil {
		Log.Warnf("viewer cache disabled, redis unreachable: %v", err)
		return nil
	}
	return cache
}

func NewDogStatsdClient() *statsd.Client {
	addr := defaultStatsdAddr
	if host := os.Getenv("DD_AGENT_HOST"); host != "" {
		addr = host + ":8125"
	}
	client, err := statsd.New(addr)
	if err != nil {
		Log.Fatalf("fail to create statsd client: %v", err)
	}
	return client
}

func main() {
	ParseFlags()
	InitLogger()
	StartTracer()
	StartProfiler()
	defer cleanup()

	setting, err := app_setting.ParseServerAppSetting(*AppSettingPath)
	if err != nil {
		Log.Fatal(err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		Log.Fatal("JWT_SECRET is not set")
	}
	tokens := auth.NewJWT(secret, time.Duration(setting.JWT_TTL_SECOND)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	eventbus := engine.NewEventBus(setting.EVENT_BUS_BUFFER)

	svc := service.NewService(newStore(), auth.NewBcrypt(setting.BCRYPT_COST), tokens, service.Config{
		DefaultPageLimit: setting.DEFAULT_PAGE_LIMIT,
		CountBasis:       service.CountBasis(setting.PAGINATION_COUNT_BASIS),
	}).WithEventPublisher(eventbus)
	if cache := newViewerCache(ctx, setting); cache != nil {
		svc.WithViewerCache(cache)
	}

	// Reporter reports relationship and article events to datadog.
	e := engine.NewEngine([]engine.Module{
		modules.NewReporter(modules.ReporterConfig{Name: "reporter"}, NewDogStatsdClient(), eventbus),
	}, ctx, cancel, eventbus)
	go e.Run()

	router := server.NewRouter(svc, tokens, setting, gintrace.Middleware(*ServiceName))
	srv := &http.Server{Addr: setting.LISTEN_ADDR, Handler: router}

	go func() {
		Log.Infof("api server starts up on %s", setting.LISTEN_ADDR)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log.Fatalf("api server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Log.Errorf("api server forced to shutdown: %v", err)
	}
	e.Shutdown()
}
