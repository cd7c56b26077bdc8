package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/sr"

	"github.com/niksmo/menu-admin/config"
	"github.com/niksmo/menu-admin/internal/adapter/httphandler"
	"github.com/niksmo/menu-admin/internal/adapter/kafka"
	"github.com/niksmo/menu-admin/internal/adapter/restapi"
	"github.com/niksmo/menu-admin/internal/adapter/storage"
	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/port"
	"github.com/niksmo/menu-admin/internal/core/service"
	"github.com/niksmo/menu-admin/pkg/schema"
)

// requestOverhead covers the reload that follows every mutation.
const requestOverhead = 5 * time.Second

type broker struct {
	serde     schema.Serde
	producer  *kafka.MenuChangesProducer
	processor port.MenuChangesProcessor
	view      *kafka.MenuChangesView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	broker     broker
	db         *storage.SQLDB
	store      *catalog.Store
	service    *service.Service
	cart       *service.Cart
	tables     service.TableBoard
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	if cfg.Broker.Enabled() {
		app.initSerdes()
		app.initBroker()
	}
	if cfg.SQLDB != "" {
		app.initStorage()
	}
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeMenuChangeV1(
		app.ctx,
		schema.SubjectOpt(schema.ValueSubject(app.cfg.Broker.Topics.MenuChanges)),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.broker.serde = serde
}

func (app *App) initBroker() {
	const op = "App.initBroker"

	seedBrokers := app.cfg.Broker.SeedBrokers
	topic := app.cfg.Broker.Topics.MenuChanges
	group := app.cfg.Broker.Consumers.MenuChangesGroup

	producer, err := kafka.NewMenuChangesProducer(
		kafka.ProducerClientOpt(app.ctx, seedBrokers, topic),
		kafka.ProducerEncoderOpt(app.broker.serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	processor, err := kafka.NewMenuChangesProc(
		seedBrokers, topic, group, app.broker.serde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewMenuChangesView(seedBrokers, group, app.broker.serde)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.producer = &producer
	app.broker.processor = processor
	app.broker.view = view
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.db = &db
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	client, err := restapi.NewClient(
		app.cfg.API.BaseURL, restapi.TimeoutOpt(app.cfg.API.Timeout),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	opts := []service.Opt{service.MaxImageBytesOpt(app.cfg.Upload.MaxImageBytes)}
	if app.broker.producer != nil {
		opts = append(opts, service.ChangesProducerOpt(app.broker.producer))
	}
	if app.db != nil {
		opts = append(opts, service.CatalogMirrorOpt(
			storage.NewCatalogRepository(app.db),
		))
	}

	app.store = catalog.NewStore()
	s, err := service.New(restapi.NewCatalog(client), app.store, opts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.service = s
	app.cart = service.NewCart(app.store)
	app.tables = service.NewTableBoard(app.cfg.DomainTables())
}

func (app *App) initInboundAdapters() {
	maxImageBytes := app.cfg.Upload.MaxImageBytes

	mux := http.NewServeMux()
	httphandler.RegisterMenu(mux, app.service)
	httphandler.RegisterItems(mux, app.service, maxImageBytes)
	httphandler.RegisterCategories(mux, app.service, maxImageBytes)
	httphandler.RegisterTables(mux, app.tables)
	httphandler.RegisterCart(mux, app.cart)

	var changes port.MenuChangesReader
	if app.broker.view != nil {
		changes = app.broker.view
	}
	httphandler.RegisterReports(mux, changes)

	handler := httphandler.LogRequests(httphandler.AllowMedia(mux))
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.API.Timeout+requestOverhead,
	)
}

// Run starts the broker workers, loads the catalog and serves HTTP.
// A failed initial load is logged; the admin can retry with reload.
func (app *App) Run(stopFn context.CancelFunc) {
	const op = "App.Run"
	log := slog.With("op", op)

	if app.broker.processor != nil {
		var wg sync.WaitGroup
		wg.Add(2)
		go app.broker.processor.Run(app.ctx, stopFn, &wg)
		go app.broker.view.Run(app.ctx, stopFn, &wg)
		wg.Wait()
	}

	if err := app.service.Reload(app.ctx); err != nil {
		log.Error("failed to load menu", "err", err)
	} else {
		log.Info("menu loaded", "nItems", len(app.store.Items()))
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.broker.processor != nil {
		app.broker.processor.Close()
	}
	if app.broker.producer != nil {
		app.broker.producer.Close()
	}
	if app.db != nil {
		app.db.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
