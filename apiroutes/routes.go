package apiroutes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardlink/go-cardlink-server/api"
	"github.com/cardlink/go-cardlink-server/api/interceptors"
	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/metrics"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

// REST API routes
func ConfigRoutes(router *gin.Engine, dbSelector *repository.CouchDBSelector, env *types.Environment) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {

		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	// SERVICE definitions
	userService := services.NewUserService(dbSelector, env)
	cardService := services.NewCardService(dbSelector, env)
	contactListService := services.NewContactListService(dbSelector, env)
	statisticsService := services.NewStatisticsService(dbSelector, env)
	qrService := services.NewQRService(dbSelector, env)
	walletService := services.NewWalletPassService(dbSelector, env)
	s3Service := services.NewS3Service(env)

	if env.TaskClient != nil {
		contactListService.SetEnqueuer(env.TaskClient)
	}

	// API definitions
	healthApi := api.NewHealthCheckApi()
	accountApi := api.NewUserAccountApi(userService, s3Service)
	cardApi := api.NewCardApi(cardService)
	contactsApi := api.NewContactsApi(contactListService, statisticsService)
	qrApi := api.NewQRApi(qrService, statisticsService)
	walletApi := api.NewWalletApi(walletService)

	// PUBLIC API
	publicApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware())
	{
		publicApi.GET("/v1/ping", healthApi.Ping)
		publicApi.POST("/v1/register", accountApi.Register)
		publicApi.POST("/v1/login", accountApi.Login)
		publicApi.POST("/v1/saveContactInfo", contactsApi.SaveContactInfo)
		publicApi.GET("/v1/generateQR/:userId", qrApi.GenerateQR)
	}

	// AUTHENTICATED API
	rootApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware(), interceptors.SessionMiddleware())
	{
		rootApi.GET("/v1/user/me", accountApi.GetUserProfile)
		rootApi.PUT("/v1/user/me", accountApi.UpdateUserProfile)
		rootApi.POST("/v1/user/media", accountApi.UploadMedia)
		rootApi.GET("/v1/user/me/contacts", contactsApi.GetMyContacts)

		rootApi.GET("/v1/card/:userId", cardApi.GetCard)
		rootApi.PUT("/v1/card", cardApi.UpdateCard)

		rootApi.POST("/v1/contacts", contactsApi.AddContact)
		rootApi.GET("/v1/contacts/:id", contactsApi.GetContacts)
		rootApi.PATCH("/v1/contacts/:id", contactsApi.UpdateContacts)
		rootApi.DELETE("/v1/contacts/:id", contactsApi.DeleteContacts)
		rootApi.DELETE("/v1/contacts/:id/contact/:index", contactsApi.DeleteContactByIndex)

		rootApi.POST("/v1/wallet/pass", walletApi.CreatePass)
	}

	return router
}
