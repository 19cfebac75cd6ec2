package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
)

const healthPingTimeout = 2 * time.Second

// Health reports readiness by pinging the database.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			response.Error(c, unavailable(err))
			return
		}

		ctx, cancel := context.WithTimeout(requestContext(c), healthPingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			response.Error(c, unavailable(err))
			return
		}

		response.Success(c, http.StatusOK, gin.H{
			"status":    "ok",
			"database":  db.Dialector.Name(),
			"checkedAt": time.Now().UTC(),
		})
	}
}

func unavailable(err error) *errors.AppError {
	return errors.New("SERVICE_UNAVAILABLE", "Database unavailable", http.StatusServiceUnavailable).WithInternal(err)
}
