package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/api/handlers"
	"github.com/maheshrc27/contentflow/internal/api/middleware"
	"github.com/maheshrc27/contentflow/internal/cache"
	job "github.com/maheshrc27/contentflow/internal/jobs"
	"github.com/maheshrc27/contentflow/internal/publisher"
	"github.com/maheshrc27/contentflow/internal/queue"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

const reconcileBatchSize = 100

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load environment file", "error", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				slog.Error("unhandled error", "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{"code": "internal_error", "message": err.Error()},
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	txRunner := repository.NewTxRunner(db)
	postRepo := repository.NewPostRepository(db)
	moveRepo := repository.NewPartitionMoveRepository(db)
	globalTimeRepo := repository.NewGlobalTimeRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	portalTokenRepo := repository.NewPortalTokenRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	attemptRepo := repository.NewPublishAttemptRepository(db)

	r2Service, err := service.NewR2Service(context.Background(), cfg.R2)
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}

	platforms := service.NewPlatformSet(cfg.SupportedPlatforms, cfg.BothPlatforms)
	guard := service.NewOwnershipGuard(clientRepo, projectRepo)

	mover := service.NewPartitionMover(txRunner, postRepo, moveRepo)
	mover.SetRetrier(queue.NewEnqueuer(client))

	calendarCache := cache.NewCalendarCache(rdb, cfg.CalendarCacheTTL)

	schedulingService := service.NewSchedulingService(postRepo, globalTimeRepo, mover, guard, platforms)
	plannerService := service.NewPlannerService(postRepo, guard, platforms)
	calendarService := service.NewCalendarService(postRepo, uploadRepo, globalTimeRepo, guard, calendarCache, cfg.QueryTimeout)
	approvalService := service.NewApprovalService(postRepo)
	batchService := service.NewBatchApprovalService(approvalService, cfg.BatchConcurrency)
	publishService := service.NewPublishService(postRepo, attemptRepo, clientRepo, guard,
		publisher.NewClient(cfg.Publisher), cfg.Publisher.Timezone, cfg.PublishConcurrency)
	portalTokenService := service.NewPortalTokenService(portalTokenRepo, guard)
	uploadService := service.NewUploadService(txRunner, uploadRepo, postRepo, projectRepo, guard, r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	project := api.Group("/projects/:projectId")

	scheduled := handlers.NewScheduledPostHandler(schedulingService, approvalService, publishService)
	project.Post("/scheduled-posts", scheduled.Schedule)
	project.Get("/scheduled-posts", scheduled.List)
	project.Patch("/scheduled-posts", scheduled.UpdateTime)
	project.Delete("/scheduled-posts", scheduled.Unschedule)
	project.Patch("/scheduled-posts/:postId/caption", scheduled.EditCaption)
	project.Post("/scheduled-posts/:postId/publish", scheduled.Publish)
	project.Get("/scheduled-posts/:postId/publish-attempts", scheduled.PublishAttempts)

	globalTime := handlers.NewGlobalTimeHandler(schedulingService)
	project.Get("/global-time", globalTime.Get)
	project.Post("/global-time", globalTime.Select)
	project.Post("/global-time/apply", globalTime.Apply)
	project.Delete("/global-time", globalTime.Clear)

	calendar := handlers.NewCalendarHandler(calendarService)
	project.Get("/calendar", calendar.Calendar)
	project.Post("/calendar/move", calendar.Move)

	planner := handlers.NewPlannerHandler(plannerService)
	project.Post("/posts", planner.Create)
	project.Get("/posts", planner.List)
	project.Patch("/posts/:postId", planner.Update)
	project.Delete("/posts/:postId", planner.Delete)

	portalTokens := handlers.NewPortalTokenHandler(portalTokenService)
	api.Post("/clients/:clientId/portal-tokens", portalTokens.Create)
	api.Get("/clients/:clientId/portal-tokens", portalTokens.List)
	api.Delete("/clients/:clientId/portal-tokens", portalTokens.Remove)

	uploads := handlers.NewUploadHandler(uploadService)
	api.Post("/uploads/:uploadId/convert", uploads.Convert)

	// client portal, authorized by portal token
	portal := handlers.NewPortalHandler(portalTokenService, approvalService, batchService, calendarService, uploadService)
	portalGroup := app.Group("/portal")
	portalGroup.Post("/approvals", portal.Approve)
	portalGroup.Post("/approvals/batch", portal.ApproveBatch)
	portalGroup.Post("/posts/:postId/resubmit", portal.Resubmit)
	portalGroup.Get("/calendar", portal.Calendar)
	portalGroup.Post("/uploads", portal.Upload)
	portalGroup.Get("/uploads", portal.ListUploads)

	// cron jobs
	reconcileJob := job.NewReconcileJob(mover, cfg.ReconcileAfter, reconcileBatchSize)

	c := cron.New()
	if err := c.AddFunc(cfg.ReconcileInterval, reconcileJob.Run); err != nil {
		log.Fatalf("Invalid reconcile schedule %q: %v", cfg.ReconcileInterval, err)
	}
	c.Start()

	//queue
	queueW := queue.NewQueue(mover)
	worker := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeReconcileMove, queueW.HandleReconcileMoveTask)

	slog.Info("starting the asynq server")
	if err := worker.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "addr", cfg.ListenAddr)

	gracefulShutdown(app, db, c, worker)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron, worker *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	c.Stop()
	worker.Shutdown()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	slog.Info("server shutdown complete")
}
