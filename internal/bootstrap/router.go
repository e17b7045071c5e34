package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/zeer-gl/thiqa-gateway/config"
	alerthttp "github.com/zeer-gl/thiqa-gateway/internal/alerts/http"
	alertrepo "github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	httpapi "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/api/http/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/calendar"
	paymenthttp "github.com/zeer-gl/thiqa-gateway/internal/payments/http"
	paymentrepo "github.com/zeer-gl/thiqa-gateway/internal/payments/repository"
	paymentservice "github.com/zeer-gl/thiqa-gateway/internal/payments/service"
	profilehttp "github.com/zeer-gl/thiqa-gateway/internal/profile/http"
	profileservice "github.com/zeer-gl/thiqa-gateway/internal/profile/service"
	proposalhttp "github.com/zeer-gl/thiqa-gateway/internal/proposals/http"
	proposalservice "github.com/zeer-gl/thiqa-gateway/internal/proposals/service"
	quotehttp "github.com/zeer-gl/thiqa-gateway/internal/quotes/http"
	quoteservice "github.com/zeer-gl/thiqa-gateway/internal/quotes/service"
	sessionhttp "github.com/zeer-gl/thiqa-gateway/internal/session/http"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	subscriptionhttp "github.com/zeer-gl/thiqa-gateway/internal/subscription/http"
	subscriptionservice "github.com/zeer-gl/thiqa-gateway/internal/subscription/service"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	Redis       *redis.Client
	Upstream    *upstream.Client
}

// Services are the wired service singletons, shared between the router and
// the cron scheduler.
type Services struct {
	Sessions *sessionrepo.SessionRepository
	Alerts   *alertrepo.AlertRepository
	Payments *paymentservice.PaymentService
}

func BuildRouter(dep RouterDeps) (*gin.Engine, *Services) {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.Upstream.BaseURL())
	healthHandler.RegisterRoutes(r)

	sessions := sessionrepo.NewSessionRepository(dep.Redis)
	alerts := alertrepo.NewAlertRepository(dep.Redis)
	endpoints := paymentrepo.NewEndpointRepository(dep.Redis)

	quoteSvc := quoteservice.NewQuoteService(dep.Upstream, sessions)
	proposalSvc := proposalservice.NewProposalService(dep.Upstream)
	subscriptionSvc := subscriptionservice.NewSubscriptionService(dep.Upstream, sessions)
	paymentSvc := paymentservice.NewPaymentService(dep.Upstream, sessions, endpoints,
		dep.Config.Payments.EndpointCandidates, dep.Config.Payments.MaxRetries)
	profileSvc := profileservice.NewProfileService(dep.Upstream, sessions)

	api := r.Group("/api/v1")
	api.Use(middleware.APIKeyMiddleware(dep.Config.Server.APIKey))

	calendar.Register(api)

	private := api.Group("")
	private.Use(sessionmw.SessionMiddleware(sessions))

	professional := private.Group("/professional")
	professional.Use(sessionmw.RequireProfessional())

	customer := private.Group("/customer")
	customer.Use(sessionmw.RequireCustomer())

	sessionhttp.New(sessions, dep.Upstream).Register(api, private)
	alerthttp.New(alerts).Register(private)
	quotehttp.New(quoteSvc, alerts, dep.Upstream).Register(professional, customer)
	proposalhttp.New(proposalSvc, alerts).Register(professional)
	subscriptionhttp.New(subscriptionSvc, alerts).Register(professional)
	paymenthttp.New(paymentSvc, alerts).Register(professional)
	profilehttp.New(profileSvc).Register(professional)

	return r, &Services{
		Sessions: sessions,
		Alerts:   alerts,
		Payments: paymentSvc,
	}
}
