package metrics

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"carts/internal/routes"
)

// startTimeKey is the per-request context slot holding the entry timestamp.
const startTimeKey = "metrics.startTime"

// Middleware wraps every request: on entry it stamps a monotonic start time
// into the request scope, on exit it resolves the matched route pattern and
// records the elapsed time against it. Instrumentation failures are logged
// and the observation dropped; the response is never affected.
func Middleware(service string, matcher *routes.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
		recordRequest(service, matcher, c)
	}
}

func recordRequest(service string, matcher *routes.Matcher, c *gin.Context) {
	method, path := c.Request.Method, c.Request.URL.Path

	v, ok := c.Get(startTimeKey)
	if !ok {
		log.Printf("metrics: no start time recorded for %s %s, skipping observation", method, path)
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		log.Printf("metrics: malformed start time for %s %s, skipping observation", method, path)
		return
	}
	elapsed := time.Since(start)

	pattern, err := matcher.Resolve(method, path)
	if err != nil {
		log.Printf("metrics: route cache build failed: %v", err)
		return
	}
	if pattern == "" {
		// Unregistered path or the error path; nothing to attribute.
		return
	}
	ObserveHTTPRequest(service, method, pattern, c.Writer.Status(), elapsed)
}
