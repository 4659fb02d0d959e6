package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"

	"finemed-server/internal/api"
	"finemed-server/internal/config"
	"finemed-server/internal/events"
	"finemed-server/internal/mailer"
	"finemed-server/internal/repository"
	"finemed-server/internal/service"
	"finemed-server/internal/validation"
	"finemed-server/migrations"
)

func connectMongoEnv(uri, dbName string) (*mongo.Database, error) {
	var client *mongo.Client
	var err error
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				log.Printf("✅ Connected to MongoDB %s", dbName)
				return client.Database(dbName), nil
			}
		}
		cancel()
		log.Printf("❌ Retry %d: Failed to connect to MongoDB (%s): %v", i+1, uri, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to MongoDB at %s after retries: %v", uri, err)
}

func main() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "finemed"
	}

	db, err := connectMongoEnv(uri, dbName)
	if err != nil {
		panic(err)
	}

	if err := migrations.EnsureIndexes(context.Background(), 3, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})

	kafkaWriter := config.NewKafkaWriter("order-topic")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret"
	}

	orderRepo := repository.NewMongoOrderRepository(db.Collection("orders"))
	productRepo := repository.NewMongoProductRepository(db.Collection("products"), rdb)
	userRepo := repository.NewMongoUserRepository(db.Collection("users"))

	notifier := mailer.NewSMTPNotifier(config.LoadSMTP())
	publisher := events.NewKafkaPublisher(kafkaWriter)

	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, notifier, publisher)
	userService := service.NewUserService(userRepo, rdb, []byte(secret))
	orderHandler := api.NewOrderHandler(orderService)
	userHandler := api.NewUserHandler(userService)

	e := echo.New()
	e.Validator = validation.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	jwtGuard := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
	})

	e.POST("/api/auth/login", userHandler.Login)

	e.POST("/api/orders", orderHandler.CreateOrder)
	e.GET("/api/orders", orderHandler.GetAllOrders)
	e.GET("/api/orders/revenue", orderHandler.GetRevenue)
	e.GET("/api/orders/email/:email", orderHandler.GetOrdersByEmail)
	e.GET("/api/orders/:orderId", orderHandler.GetSingleOrder)
	e.PUT("/api/orders/:orderId", orderHandler.UpdateOrder)
	e.DELETE("/api/orders/:orderId", orderHandler.DeleteOrder, jwtGuard)
	e.PATCH("/api/orders/:orderId/verify-prescription", orderHandler.VerifyPrescription, jwtGuard)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "finemed-server",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":8080"))
}
