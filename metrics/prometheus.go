package metrics

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// all metrics and middlewares for the REST API
var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	// active REST API connections
	activeRESTConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rest_connections",
			Help: "Number of active REST API connections",
		},
	)

	// response times for REST APIs
	responseTimeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_time_milliseconds",
			Help:    "REST API response time distributions",
			Buckets: []float64{1, 10, 50, 100, 200, 300, 400, 500},
		},
		[]string{"method", "endpoint"},
	)

	// Number of requests processed by REST API
	RESTRequestMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_requests_processed_total",
		Help: "The total number of processed REST requests",
	}, []string{"method", "endpoint"})

	// Number of contacts appended to contact lists
	ContactsSavedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contacts_saved_total",
		Help: "The total number of contact entries saved",
	})

	// Number of contact entries deleted by index
	ContactsDeletedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contacts_deleted_total",
		Help: "The total number of contact entries deleted",
	})

	// Number of QR codes generated
	QRGeneratedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qr_codes_generated_total",
		Help: "The total number of QR codes generated",
	})

	// Number of notification emails sent
	NotificationEmailsSentCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emails_sent_total",
		Help: "The total number of notification emails sent",
	})

	// Number of notification emails that failed to send
	NotificationEmailsFailedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emails_failed_total",
		Help: "The total number of notification emails that failed to send",
	})

	// Number of wallet passes requested from the third party provider
	WalletPassRequestsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_pass_requests_total",
		Help: "The total number of wallet pass creation requests",
	})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(activeRESTConnections)
		prometheus.MustRegister(responseTimeRESTAPI)
		prometheus.MustRegister(RESTRequestMetricsTotal)
		prometheus.MustRegister(ContactsSavedCount)
		prometheus.MustRegister(ContactsDeletedCount)
		prometheus.MustRegister(QRGeneratedCount)
		prometheus.MustRegister(NotificationEmailsSentCount)
		prometheus.MustRegister(NotificationEmailsFailedCount)
		prometheus.MustRegister(WalletPassRequestsCount)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Increment the counter for the given endpoint:
		RESTRequestMetricsTotal.WithLabelValues(c.Request.Method, c.FullPath()).Inc()

		// Start timing responseTime histogram
		start := time.Now()

		// Set activeConnections gauge
		activeRESTConnections.Inc()
		defer activeRESTConnections.Dec()

		c.Next()

		// Set responseTime histogram
		latency := time.Since(start)
		responseTimeRESTAPI.WithLabelValues(c.Request.Method, c.Request.URL.Path).Observe(float64(latency.Milliseconds()))
	}
}
