package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/guidance"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to prepare database schema: %v", err)
	}

	guide := guidance.Load(cfg.GuidancePath)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)

	mediaService := service.NewMediaService(cfg)
	clients := service.NewPlatformClients(cfg, mediaService)
	publisherService := service.NewPublisherService(cfg, postRepo, clients)
	generatorService := service.NewGeneratorService(cfg, loc, postRepo, guide)
	imageService := service.NewImageService(cfg, postRepo, mediaService)
	postService := service.NewPostService(cfg, loc, postRepo, publisherService, guide)

	if cfg.SeedExamples {
		if err := postService.SeedExamples(context.Background()); err != nil {
			log.Printf("Failed to seed example posts: %v", err)
		}
	}

	health := handlers.NewHealthHandler(loc)
	app.Get("/health", health.Health)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	app.Use(authMiddleware.AuthMiddleware())

	generate := handlers.NewGenerateHandler(generatorService, imageService)
	app.Post("/generate/text", generate.GenerateText)
	app.Post("/generate/image", generate.GenerateImage)
	app.Get("/stream/generate/text", generate.StreamText)
	app.Get("/stream/generate/image", generate.StreamImage)

	post := handlers.NewPostHandler(postService, generatorService, client)
	app.Post("/posts", post.CreatePost)
	app.Get("/posts", post.ListPosts)
	app.Get("/posts/:id", post.GetPost)
	app.Put("/posts/:id", post.UpdatePost)
	app.Delete("/posts/:id", post.DeletePost)
	app.Post("/posts/:id/publish", post.PublishPost)
	app.Post("/posts/:id/cancel", post.CancelPost)
	app.Delete("/posts/:id/cancel", post.UncancelPost)
	app.Post("/posts/:id/schedule", post.SchedulePost)

	draft := handlers.NewDraftHandler(postService)
	app.Get("/drafts", draft.ListDrafts)
	app.Post("/drafts", draft.CreateDraft)
	app.Put("/drafts/:id", draft.UpdateDraft)

	// cron sweep catches posts whose queue task was lost
	publishDueJob := job.NewPublishDueJob(postRepo, publisherService)

	queueW := queue.NewQueue(publisherService)

	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %s", cfg.SweepInterval), publishDueJob.PublishDue)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: cfg.QueueConcurrency,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
