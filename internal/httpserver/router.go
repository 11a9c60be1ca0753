package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"customer-accounts/internal/authz"
	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	addresssvc "customer-accounts/internal/service/address"
	customersvc "customer-accounts/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultActorHeader names the header carrying the caller's customer id.
const DefaultActorHeader = "X-Customer-ID"

// CustomerService is the customer surface the handlers depend on.
type CustomerService interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*customersvc.LoginResult, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, actor authz.Actor, id string, in customersvc.UpdateInput) (*domain.Customer, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

// AddressService is the address surface the handlers depend on.
type AddressService interface {
	List(ctx context.Context, customerID string) ([]domain.Address, error)
	Get(ctx context.Context, id string) (*domain.Address, error)
	Create(ctx context.Context, actor authz.Actor, customerID string, in addresssvc.Input) (*domain.Address, error)
	Update(ctx context.Context, actor authz.Actor, id string, p addresssvc.Patch) (*domain.Address, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

// Deps groups the collaborators of the router.
type Deps struct {
	CustomerSvc CustomerService
	AddressSvc  AddressService
	Store       Pinger
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.CustomerSvc == nil || deps.AddressSvc == nil {
		return nil, errors.New("httpserver: customer and address services are required")
	}
	actorHeader := opts.ActorHeader
	if actorHeader == "" {
		actorHeader = DefaultActorHeader
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", actorHeader, logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.CORSAllowedOrigins
	}
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("httpserver: cors: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		logger.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		cors.New(corsCfg),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	api := router.Group("/", actorMiddleware(actorHeader))

	customers := &customerHandler{svc: deps.CustomerSvc}
	api.POST("/customers", permit(authz.ResourceCustomer, authz.ActionCreate), customers.register)
	api.POST("/customers/login", permit(authz.ResourceCustomer, authz.ActionLogin), customers.login)
	api.GET("/customers", permit(authz.ResourceCustomer, authz.ActionList), customers.list)
	api.GET("/customers/:id", permit(authz.ResourceCustomer, authz.ActionRetrieve), customers.get)
	api.PUT("/customers/:id", customers.update)
	api.PATCH("/customers/:id", customers.update)
	api.DELETE("/customers/:id", customers.delete)

	addresses := &addressHandler{svc: deps.AddressSvc}
	api.GET("/addresses", permit(authz.ResourceAddress, authz.ActionList), addresses.list)
	api.POST("/addresses", permit(authz.ResourceAddress, authz.ActionCreate), addresses.create)
	api.GET("/addresses/:id", permit(authz.ResourceAddress, authz.ActionRetrieve), addresses.get)
	api.PUT("/addresses/:id", addresses.update)
	api.PATCH("/addresses/:id", addresses.update)
	api.DELETE("/addresses/:id", addresses.delete)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found", "code": codeNotFound})
	})

	return router, nil
}
