package handlers

import (
	"database/sql"
	"time"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *sql.DB           // Read/Write connection pool
	Scheduler *scheduler.Engine // Menu scheduling + calendar projection
}

// dateFormats accepted by parseDate, tried in order.
var dateFormats = []string{"2006-01-02", "01/02/2006", "01/02/06"}

// parseDate parses a date in any of the accepted formats.
func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// callerCapabilities reads the role the middleware stored on the context and
// turns it into the capability set passed into the scheduling engine.
func callerCapabilities(c *gin.Context) auth.Capabilities {
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	return auth.CapabilitiesForRole(roleStr)
}
