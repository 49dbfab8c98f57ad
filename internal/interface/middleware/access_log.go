package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/maisrole-api/pkg/helpers"
)

// AccessLog writes one structured entry per request. Errors attached with
// c.Error are logged at error level for 5xx and debug level otherwise.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString("request_id"),
			"ip":         ipFromCtx(c),
		}
		if id := IdentityFrom(c); id != nil {
			fields["actor"] = string(id.Kind)
			fields["actor_id"] = id.ID
		}

		if status >= 500 {
			for _, e := range c.Errors {
				helpers.LogError(logger, "request failed", e.Err, copyFields(fields))
			}
			if len(c.Errors) == 0 {
				logger.WithFields(fields).Error("request failed")
			}
			return
		}
		entry := logger.WithFields(fields)
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Debug("request rejected")
		}
		entry.Info("request")
	}
}

func copyFields(f logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
