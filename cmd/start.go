package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tlf-sync/core/loader"
	"tlf-sync/core/logger"
	"tlf-sync/core/middleware/auth"
	"tlf-sync/core/middleware/rayid"
	"tlf-sync/feature/integrity"
	"tlf-sync/feature/tlf"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "tlf-sync/docs/swagger"
)

// @title TLF Sync API
// @version 1.0
// @description Inventory reconciliation between the automated board storage and the warehouse ledger.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync scheduler and HTTP server",
	Long:  `Starts the periodic sync cycle, the HTTP server and all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Wire configuration, databases and the engine
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(tlf.NewFeature(tlf.NewService(rt.runner, rt.store, rt.archive, logg)))
		mgr.Register(integrity.NewFeature(rt.ledger, rt.source, rt.objects, rt.cfg.Storage, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		if !rt.cfg.Server.IsProtected() {
			logg.Warn("No API key configured, the API is open")
		}
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 5. Start Scheduler
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if rt.cfg.Sync.Enabled {
			go tlf.NewScheduler(rt.runner, rt.cfg.Sync.Interval(), logg).Run(ctx)
		} else {
			logg.Info("Scheduler disabled, cycles run on demand only")
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("address", rt.cfg.Server.Address()),
				zap.Strings("features", mgr.Enabled()),
			)
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
