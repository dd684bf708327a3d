// Package main is the entry point for the back-office service. It
// loads configuration, connects Postgres and Redis, wires the core
// services and starts the HTTP server.
package main

import (
	"context"
	"log"
	"time"

	"cajero/internal/config"
	"cajero/internal/repositories"
	"cajero/internal/repositories/cache"
	"cajero/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	dbCfg := repositories.DefaultDBConfig
	dbCfg.MaxIdleConns = config.GetIntEnv("DB_MAX_IDLE_CONNS", dbCfg.MaxIdleConns)
	dbCfg.MaxOpenConns = config.GetIntEnv("DB_MAX_OPEN_CONNS", dbCfg.MaxOpenConns)
	dbCfg.ConnMaxLifetime = config.GetDurationEnv("DB_CONN_MAX_LIFETIME", dbCfg.ConnMaxLifetime)
	dbCfg.ConnMaxIdleTime = config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", dbCfg.ConnMaxIdleTime)

	db, err := repositories.InitDB(dbCfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("failed to close database connection: %v", err)
			}
		}
	}()

	var cacheService *cache.CacheService
	if config.GetEnv("REDIS_ENABLED", "true") == "true" {
		redisClient := cache.NewRedisClient(&cache.RedisConfig{
			Host:     config.GetEnv("REDIS_HOST", "localhost"),
			Port:     config.GetEnv("REDIS_PORT", "6379"),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetIntEnv("REDIS_DB", 0),
		})
		cacheService = cache.NewCacheService(redisClient, 30*time.Minute)
		if err := cacheService.HealthCheck(context.Background()); err != nil {
			log.Printf("redis unavailable, continuing without cache: %v", err)
			cacheService = nil
		} else {
			defer func() {
				if err := cacheService.Close(); err != nil {
					log.Printf("failed to close redis connection: %v", err)
				}
			}()
		}
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, db, cacheService)

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
