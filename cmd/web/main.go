package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/content"
	"github.com/toyshop/web/internal/i18n"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
)

var (
	shopClient   *shop.Client
	authClient   *auth.Client
	contentStore *content.Store
	webLog       = zap.NewNop()
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		addr       string
		tmplPath   string
		pubPath    string
		localesDir string
		contentDir string
	)
	// Port resolution: prefer TOYSHOP_WEB_PORT, then Cloud Run's PORT, else 8080
	port := os.Getenv("TOYSHOP_WEB_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}
	flag.StringVar(&addr, "addr", ":"+port, "HTTP listen address")
	flag.StringVar(&tmplPath, "templates", templatesDir, "templates directory")
	flag.StringVar(&pubPath, "public", publicDir, "public assets directory")
	flag.StringVar(&localesDir, "locales", "locales", "locale tables directory")
	flag.StringVar(&contentDir, "content", "content", "info pages directory")
	flag.Parse()

	templatesDir = tmplPath
	publicDir = pubPath

	// Dev mode: prefer TOYSHOP_WEB_DEV, fallback to DEV
	devMode = os.Getenv("TOYSHOP_WEB_DEV") != "" || os.Getenv("DEV") != ""

	logger, err := newLogger(devMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	i18nBundle, err = i18n.Load(localesDir, "uz", []string{"uz", "ru", "en"})
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	apiBase := os.Getenv("TOYSHOP_API_BASE_URL")
	shopClient = shop.NewClient(apiBase)
	authClient = auth.NewClient(apiBase)
	contentStore = content.NewStore(contentDir)

	r := newRouter(logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("web listening", zap.String("addr", addr), zap.Bool("dev", devMode))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRouter(logger *zap.Logger) chi.Router {
	webLog = logger
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Session)
	r.Use(mw.Locale(i18nBundle))
	r.Use(mw.Auth)
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.Static(filepath.Join(publicDir, "assets")))
	r.Handle("/assets/*", assets)

	r.Get("/", HomeHandler)

	r.Get("/allproducts", ProductsHandler)
	r.Get("/allproducts/page", ProductsPageFrag)

	r.Get("/product-details/{productID}", ProductDetailHandler)
	r.Get("/product-details/{productID}/comments", ProductCommentsFrag)
	r.Post("/product-details/{productID}/comments", ProductCommentCreateHandler)

	r.Get("/basket", BasketHandler)
	r.Post("/basket/add", BasketAddHandler)
	r.Post("/basket/quantity", BasketQuantityHandler)
	r.Post("/basket/remove", BasketRemoveHandler)
	r.Post("/basket/clear", BasketClearHandler)
	r.Post("/basket/order", BasketPlaceOrderHandler)

	r.Get("/sale-info", SaleInfoHandler)
	r.Post("/sale-info/submit", SaleInfoSubmitHandler)

	r.Get("/orders", OrdersHandler)

	r.Get("/login", LoginHandler)
	r.Post("/login/phone", LoginPhoneHandler)
	r.Post("/login/verify", LoginVerifyHandler)
	r.Post("/logout", LogoutHandler)

	r.Get("/info/{slug}", InfoPageHandler)

	return r
}
