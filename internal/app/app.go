// Package app assembles the reservation service from configuration: the
// store, the engine services, the lifecycle event pipeline and the HTTP
// server.
package app

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/auditorium-seat-reservation/internal/catalog"
    "github.com/iliyamo/auditorium-seat-reservation/internal/clock"
    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
    "github.com/iliyamo/auditorium-seat-reservation/internal/database"
    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/handler"
    "github.com/iliyamo/auditorium-seat-reservation/internal/middleware"
    "github.com/iliyamo/auditorium-seat-reservation/internal/queue"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository/memstore"
    "github.com/iliyamo/auditorium-seat-reservation/internal/router"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
    "github.com/iliyamo/auditorium-seat-reservation/internal/ticket"
)

// Options carry command-line overrides.
type Options struct {
    Migrate     bool
    CatalogFile string
    Clock       clock.Clock
}

// showStore is what the catalog import and the engine need from shows.
type showStore interface {
    service.ShowCatalog
    catalog.Sink
}

// App is a fully wired service.
type App struct {
    Echo      *echo.Echo
    Manager   *service.BookingManager
    Sweeper   *service.HoldSweeper
    publisher *queue.Publisher
    consumer  *queue.Consumer
    db        *sql.DB
    redis     *redis.Client
    cfg       config.Config
    logger    *logrus.Logger
}

// New builds the application.  With STORE_DRIVER=mysql it connects to the
// database, optionally migrates it, and imports the catalog file if one is
// given.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger, opts Options) (*App, error) {
    clk := opts.Clock
    if clk == nil {
        clk = clock.NewReal()
    }
    a := &App{cfg: cfg, logger: logger}

    var (
        shows    showStore
        ledger   service.LedgerStore
        bookings service.BookingStore
        tickets  service.TicketStore
    )
    switch cfg.App.StoreDriver {
    case "memory":
        shows, ledger, bookings, tickets = memstore.NewShowStore(), memstore.NewSeatLedger(), memstore.NewBookingStore(), memstore.NewTicketStore()
    case "mysql", "":
        db, err := database.Open(ctx, cfg.DB)
        if err != nil {
            return nil, err
        }
        a.db = db
        if opts.Migrate {
            if err := database.Migrate(ctx, db); err != nil {
                _ = db.Close()
                return nil, err
            }
            logger.Info("database schema applied")
        }
        shows = repository.NewShowRepo(db, logger)
        ledger = repository.NewSeatLedgerRepo(db, logger)
        bookings = repository.NewBookingRepo(db, logger)
        tickets = repository.NewTicketRepo(db, logger)
    default:
        return nil, errs.New("unknown STORE_DRIVER " + cfg.App.StoreDriver)
    }

    catalogFile := opts.CatalogFile
    if catalogFile == "" {
        catalogFile = cfg.App.CatalogFile
    }
    if catalogFile != "" {
        list, err := catalog.LoadFile(catalogFile)
        if err != nil {
            a.Close()
            return nil, err
        }
        if err := catalog.Import(ctx, shows, list, logger); err != nil {
            a.Close()
            return nil, err
        }
    }

    var events service.EventPublisher = queue.NewLogPublisher(logger)
    if cfg.Rabbit.Enabled {
        a.publisher = queue.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue, logger,
            queue.WithBuffer(cfg.Rabbit.PublishBuffer),
            queue.WithDialTimeout(cfg.Rabbit.DialTimeout),
        )
        events = a.publisher
        a.consumer = queue.NewConsumer(cfg.Rabbit.URL, cfg.Rabbit.Queue, cfg.Rabbit.AuditLog, logger)
    }

    if cfg.Ticket.SigningSecret == "" {
        logger.Warn("TICKET_SIGNING_SECRET is empty; ticket issuance will fail")
    }
    signer := ticket.NewSigner(ticket.NewSecretKeyProvider(cfg.Ticket.SigningSecret))
    encoder := ticket.Encoder{BaseURL: cfg.Ticket.ValidationBaseURL, Size: cfg.Ticket.QRSize}

    seatLedger := service.NewSeatLedger(shows, ledger, clk, cfg.Booking.HoldTimeout, logger)
    issuer := service.NewTicketIssuer(signer, encoder, tickets, clk, cfg.Ticket.TTL, logger)
    a.Manager = service.NewBookingManager(seatLedger, issuer, bookings, tickets, events, clk, logger)
    validator := service.NewTicketValidator(signer, tickets, bookings, events, clk, logger)
    damage := service.NewDamageCorrelator(seatLedger, clk, logger)
    a.Sweeper = service.NewHoldSweeper(a.Manager, cfg.Booking.SweepInterval, cfg.Booking.SweepBatch, logger)

    var mw router.Middlewares
    if cfg.RateLimit.Enabled || cfg.Cache.Enabled {
        a.redis = config.NewRedisClient(cfg.Redis)
        if a.redis == nil {
            logger.Warn("redis unreachable; rate limiting and response cache disabled")
        } else {
            if cfg.RateLimit.Enabled {
                mw.RateLimit = middleware.NewTokenBucket(cfg.RateLimit, a.redis, logger)
            }
            if cfg.Cache.Enabled {
                mw.Cache = middleware.NewRedisCache(cfg.Cache, a.redis, logger)
            }
        }
    }

    var pinger handler.Pinger
    if a.db != nil {
        pinger = a.db
    }
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestLogger(logger))
    router.RegisterRoutes(e, router.Handlers{
        Health:  handler.NewHealthHandler(pinger),
        Show:    handler.NewShowHandler(shows, logger),
        Booking: handler.NewBookingHandler(a.Manager, logger),
        Ticket:  handler.NewTicketHandler(validator, logger),
        Admin:   handler.NewAdminHandler(damage, seatLedger, logger),
    }, mw, cfg.JWT.Secret)
    a.Echo = e
    return a, nil
}

// Run serves HTTP, sweeps expired holds and consumes lifecycle events until
// ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
    g, ctx := errgroup.WithContext(ctx)
    addr := ":" + a.cfg.App.Port

    g.Go(func() error {
        a.logger.WithFields(logrus.Fields{"addr": addr, "env": a.cfg.App.Env, "store": a.cfg.App.StoreDriver}).Info("listening")
        if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return errs.Wrap(err, "http server")
        }
        return nil
    })
    g.Go(func() error {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        return a.Echo.Shutdown(shutdownCtx)
    })
    g.Go(func() error { return a.Sweeper.Run(ctx) })
    if a.publisher != nil {
        g.Go(func() error { return a.publisher.Run(ctx) })
    }
    if a.consumer != nil {
        g.Go(func() error { return a.consumer.Run(ctx) })
    }

    err := g.Wait()
    a.Close()
    return err
}

// Close releases the database and Redis connections.
func (a *App) Close() {
    if a.db != nil {
        _ = a.db.Close()
    }
    if a.redis != nil {
        _ = a.redis.Close()
    }
}

