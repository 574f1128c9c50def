package app

import (
	"context"
	"os"

	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects the infrastructure, wires the service graph, and
// registers every route on the router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(db, gormDB)
	if err != nil {
		return err
	}

	// Work rules are read on every attendance derivation; prime the cache
	// before the first request lands.
	if err := reg.WorkRules.Init(context.Background()); err != nil {
		return err
	}

	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(50), 100))

	registerModules(router, reg, rdb)
	return nil
}
