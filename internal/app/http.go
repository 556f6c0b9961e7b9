package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Saurav036/nexus/internal/auth"
	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/config"
	"github.com/Saurav036/nexus/internal/handler"
	"github.com/Saurav036/nexus/internal/identity"
	"github.com/Saurav036/nexus/internal/middleware"
	"github.com/Saurav036/nexus/internal/session"
	"github.com/Saurav036/nexus/internal/signup"
	"github.com/Saurav036/nexus/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// idle per-IP limiters are forgotten after this long
const limiterIdle = 10 * time.Minute

// deferredTokens lets the backend client be built before the session
// provider that serves its tokens.
type deferredTokens struct {
	backend.TokenProvider
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func(context.Context) error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	if err := validation.RegisterBindings(); err != nil {
		_ = infra.Close(ctx)
		return nil, nil, err
	}

	idp, err := identity.New(ctx, identity.Settings{
		Issuer:         cfg.Issuer(),
		ClientID:       cfg.Auth0ClientID,
		ClientSecret:   cfg.Auth0ClientSecret,
		Audience:       cfg.Auth0Audience,
		RedirectURL:    cfg.CallbackURL(),
		ClaimNamespace: cfg.Auth0ClaimNamespace,
	})
	if err != nil {
		_ = infra.Close(ctx)
		return nil, nil, err
	}

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	tokenStore := session.NewRedisTokenStore(infra.Redis.Client, cfg.SessionTTL)

	tokens := &deferredTokens{}
	api := backend.NewAPI(backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, tokens))

	sessions := auth.NewSessionProvider(
		idp,
		auth.BackendDirectory(api),
		sessionStore,
		tokenStore,
		cfg.SessionTTL,
	)
	tokens.TokenProvider = sessions.BackendTokens()

	// signup runs before anyone is logged in
	signupAPI := backend.NewAPI(backend.NewClient(cfg.APIBaseURL, cfg.SignupAPITimeout, nil))

	h := handler.NewHandler(handler.Deps{
		IdP:        idp,
		Sessions:   sessions,
		API:        api,
		Flow:       signup.NewFlow(signup.NewBackend(signupAPI), nil),
		Flows:      signup.NewStore(cfg.SignupFlowTTL),
		Superseder: signup.NewSuperseder(),
		Limiter:    middleware.NewRateLimiter(cfg.SignupRateLimit, cfg.SignupRateBurst, limiterIdle),
		Store:      infra.Redis,
		PublicURL:  cfg.PublicURL,
		Cookies: session.CookieOptions{
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
	})

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.OTelServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())

	h.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.Close, nil
}
