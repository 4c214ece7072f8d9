// file: app.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"zeus-tournaments/config"
	"zeus-tournaments/controllers"
	"zeus-tournaments/logger"
	"zeus-tournaments/middleware"
	"zeus-tournaments/services"
	"zeus-tournaments/view"
	"zeus-tournaments/websocket"
)

// telemetry is both sinks the application publishes to.
type telemetry interface {
	services.Metrics
	websocket.Gauges
}

// App holds everything main starts and later shuts down.
type App struct {
	Router   *gin.Engine
	Views    *view.Registry
	Hub      *websocket.Hub
	Gauges   websocket.Gauges
	closers  []func()
	stopping context.CancelFunc
}

// NewApp connects the configured backends and builds the router.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	storage, err := app.sessionStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := services.NewHTTPClient(cfg.TracingEnabled)
	tournaments, err := app.tournamentService(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}

	var sink telemetry = services.NoopMetrics{}
	if cfg.MetricsEnabled {
		cw, err := services.NewCloudWatchMetrics()
		if err != nil {
			return nil, fmt.Errorf("cloudwatch: %w", err)
		}
		sink = cw
	}
	app.Gauges = sink

	// auto refresh outlives requests, so it hangs off its own context
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	app.stopping = stopRefresh

	app.Views = view.NewRegistry(func(id string) (*view.Loop, error) {
		auth := services.NewAuthClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, httpClient, storage, id)
		client := services.NewClient(auth, tournaments, sink, cfg.TracingEnabled)
		loop := view.NewLoop(id, client)

		viewCtx, cancel := context.WithCancel(refreshCtx)
		auth.StartAutoRefresh(viewCtx)
		loop.OnClose(cancel)
		return loop, nil
	})

	app.Hub = websocket.NewHub(logger.L, sink)
	app.Hub.AllowOrigins(cfg.ApplicationURL)

	app.Router = newRouter(cfg, app.Views, app.Hub)
	ok = true
	return app, nil
}

func (a *App) sessionStorage(ctx context.Context, cfg *config.Config) (services.SessionStorage, error) {
	if cfg.SessionStore != config.StoreRedis {
		return services.NewMemoryStorage(), nil
	}
	rdb, err := services.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := rdb.Close(); err != nil {
			logger.Warn.Printf("[App.Close] Redis close: %v", err)
		}
	})
	return services.NewRedisStorage(rdb, 0), nil
}

func (a *App) tournamentService(ctx context.Context, cfg *config.Config, httpClient *http.Client) (services.TournamentService, error) {
	if cfg.DataBackend != config.BackendPostgres {
		return services.NewRestTournamentService(cfg.SupabaseURL, cfg.SupabaseAnonKey, httpClient), nil
	}
	pool, err := services.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	return services.NewPostgresTournamentService(pool), nil
}

// Close stops every view and disconnects the backends.
func (a *App) Close() {
	if a.Views != nil {
		a.Views.Close()
	}
	if a.stopping != nil {
		a.stopping()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func templatesGlob() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "templates", "*.html")
}

func newRouter(cfg *config.Config, views *view.Registry, hub *websocket.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.L))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.ApplicationURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("zeussession", store))
	router.Use(middleware.ViewRequired)

	templatesDir := templatesGlob()
	logger.Debug.Printf("[newRouter] Templates path: %s", templatesDir)
	router.LoadHTMLGlob(templatesDir)

	controllers.SetConfig(cfg.ApplicationURL, cfg.WebsocketURL)
	controllers.RegisterRoutes(router, views)
	router.GET("/view-updates", hub.ServeWs(views))
	return router
}
