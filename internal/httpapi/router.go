package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the demo's introspection router: everything is read-only,
// there is no auth layer here, unlike the rest of this codebase's lineage,
// since nothing here lets a caller mutate job state.
func NewRouter(jobs *JobsHandler) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/")
	{
		api.GET("/jobs", jobs.ListJobs)
		api.GET("/jobs/:id", jobs.GetJob)
		api.GET("/stats", jobs.GetStats)
	}

	return router
}
