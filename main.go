package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"tienda/internal/handlers"
	"tienda/internal/models"
	"tienda/internal/realtime"
	"tienda/internal/repositories"
	"tienda/internal/services"
	"tienda/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("PUBLIC_DIR", "./public")
	viper.SetDefault("VIEWS_DIR", "./views")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	dataDir := viper.GetString("DATA_DIR")
	publicDir := viper.GetString("PUBLIC_DIR")
	viewsDir := viper.GetString("VIEWS_DIR")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize RabbitMQ Client (optional) ---
	// The catalog works without a broker; events are simply skipped.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, product events disabled: %v", err)
		} else {
			mqClient = client
			defer mqClient.Close()
		}
	}

	// --- Initialize Collections ---
	productsColl := repositories.NewFileCollection[models.Product](filepath.Join(dataDir, "products.json"))
	cartsColl := repositories.NewFileCollection[models.Cart](filepath.Join(dataDir, "carts.json"))

	// --- Initialize Services ---
	productService := services.NewProductService(productsColl, mqClient)
	// CartService depends on ProductService for referential validation
	cartService := services.NewCartService(cartsColl, productService)

	// --- Initialize Realtime Hub ---
	hub := realtime.NewHub(productService)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService, hub)
	cartHandler := handlers.NewCartHandler(cartService)
	uploadHandler := handlers.NewUploadHandler(publicDir)
	viewHandler := handlers.NewViewHandler(productService)

	// --- Initialize Fiber App ---
	engine := html.New(viewsDir, ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api)
	uploadHandler.RegisterRoutes(api)

	// --- Views, Websocket, Static Assets ---
	viewHandler.RegisterRoutes(app)
	app.Use("/ws", realtime.Upgrade)
	app.Get("/ws", hub.Handler())
	app.Static("/", publicDir)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"service": "tienda",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// A simple audit consumer logging every catalog event. Inventory or
	// notification workers would hang off the same queue.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received product event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
