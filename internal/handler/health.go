package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type healthStatus struct {
	OK    bool   `json:"ok"`
	DB    string `json:"db"`
	Redis string `json:"redis"`
}

// Health reports whether the register can take sales: Postgres must answer
// (commits are transactional) and Redis must answer (receipt queue). Either
// one failing turns the response into a 503 so the terminal can go into its
// degraded mode instead of losing sales mid-commit.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		s := healthStatus{DB: "up", Redis: "up"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			s.DB = "down"
		}
		if rdb.Ping(ctx).Err() != nil {
			s.Redis = "down"
		}

		s.OK = s.DB == "up" && s.Redis == "up"
		code := http.StatusOK
		if !s.OK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, s)
	}
}
