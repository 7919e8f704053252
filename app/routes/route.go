package routes

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/cache"
	"github.com/nattawatj/go-storefront/app/configs"
	"github.com/nattawatj/go-storefront/app/handlers"
	"github.com/nattawatj/go-storefront/app/middlewares"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/services"
	"github.com/nattawatj/go-storefront/app/utils/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

// NewRouter wires repositories, services and handlers onto the HTTP
// surface. Route groups: public storefront reads, authenticated customer
// routes, and back-office writes gated by role. The returned sweeper is
// not started; main owns its lifecycle.
func NewRouter(db *gorm.DB, rdb *redis.Client, env configs.ENV) (*mux.Router, *services.ExpirySweeper) {
	rnd := render.New()
	validate := validator.New()

	productCache := cache.NewProductCache(rdb)

	tx := repositories.NewTransactor(db)
	userRepo := repositories.NewUserRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	productRepo := repositories.NewProductRepository(db, productCache)
	categoryRepo := repositories.NewCategoryRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	cartItemRepo := repositories.NewCartItemRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	couponRepo := repositories.NewCouponRepository(db)

	cartService := services.NewCartService(cartRepo, cartItemRepo, productRepo)
	couponService := services.NewCouponService(couponRepo, orderRepo)
	orderService := services.NewOrderService(tx, userRepo, addressRepo, cartRepo, productRepo, orderRepo, couponRepo, couponService)
	sweeper := services.NewExpirySweeper(orderService)

	sessionStore := sessions.NewCookieSessionStore()

	authHandler := handlers.NewAuthHandler(rnd, userRepo, sessionStore, validate)
	productHandler := handlers.NewProductHandler(rnd, productRepo, categoryRepo, brandRepo, orderRepo, validate)
	categoryHandler := handlers.NewCategoryHandler(rnd, categoryRepo, productRepo, validate)
	brandHandler := handlers.NewBrandHandler(rnd, brandRepo, productRepo, validate)
	cartHandler := handlers.NewCartHandler(rnd, cartService)
	couponHandler := handlers.NewCouponHandler(rnd, couponRepo, couponService, cartService, validate)
	orderHandler := handlers.NewOrderHandler(rnd, orderService, validate)
	userHandler := handlers.NewUserHandler(rnd, userRepo, addressRepo, productRepo, validate)

	auth := middlewares.AuthMiddleware(rnd, sessionStore, userRepo)
	staffOnly := middlewares.RequireRole(rnd, models.RoleAdmin, models.RoleEmployee)
	adminOnly := middlewares.RequireRole(rnd, models.RoleAdmin)

	staff := func(h http.HandlerFunc) http.Handler { return auth(staffOnly(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return auth(adminOnly(h)) }

	r := mux.NewRouter()
	r.Use(middlewares.MetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = rnd.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/csrf", func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusOK, map[string]string{"csrf_token": csrf.Token(r)})
	}).Methods("GET")

	// Public catalog reads.
	r.HandleFunc("/products", productHandler.List).Methods("GET")
	r.HandleFunc("/products/{slug}", productHandler.GetBySlug).Methods("GET")
	r.HandleFunc("/categories", categoryHandler.List).Methods("GET")
	r.HandleFunc("/brands", brandHandler.List).Methods("GET")

	// Back-office catalog writes.
	r.Handle("/products", staff(productHandler.Create)).Methods("POST")
	r.Handle("/products/{id}", staff(productHandler.Update)).Methods("PUT")
	r.Handle("/products/{id}", staff(productHandler.Delete)).Methods("DELETE")
	r.Handle("/categories", staff(categoryHandler.Create)).Methods("POST")
	r.Handle("/categories/{id}", staff(categoryHandler.Update)).Methods("PUT")
	r.Handle("/categories/{id}", staff(categoryHandler.Delete)).Methods("DELETE")
	r.Handle("/brands", staff(brandHandler.Create)).Methods("POST")
	r.Handle("/brands/{id}", staff(brandHandler.Update)).Methods("PUT")
	r.Handle("/brands/{id}", staff(brandHandler.Delete)).Methods("DELETE")

	r.Handle("/coupons", admin(couponHandler.List)).Methods("GET")
	r.Handle("/coupons", admin(couponHandler.Create)).Methods("POST")
	r.Handle("/coupons/{id}", admin(couponHandler.Update)).Methods("PUT")
	r.Handle("/coupons/{id}", admin(couponHandler.Delete)).Methods("DELETE")

	r.Handle("/order/{id}/status", staff(orderHandler.UpdateStatus)).Methods("PUT")

	r.Handle("/users", admin(userHandler.ListUsers)).Methods("GET")
	r.Handle("/users/{id}/role", admin(userHandler.UpdateRole)).Methods("PUT")

	// Authenticated customer surface.
	authed := r.NewRoute().Subrouter()
	authed.Use(auth)

	authed.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	authed.HandleFunc("/cart", cartHandler.Get).Methods("GET")
	authed.HandleFunc("/cart/items", cartHandler.AddItem).Methods("POST")
	authed.HandleFunc("/cart/items/{productId}", cartHandler.UpdateItem).Methods("PUT")
	authed.HandleFunc("/cart/items/{productId}", cartHandler.RemoveItem).Methods("DELETE")

	authed.HandleFunc("/coupon/check", couponHandler.Check).Methods("POST")

	authed.HandleFunc("/order", orderHandler.Create).Methods("POST")
	authed.HandleFunc("/order", orderHandler.List).Methods("GET")
	authed.HandleFunc("/order/{id}", orderHandler.Get).Methods("GET")
	authed.HandleFunc("/order/{id}/pay", orderHandler.Pay).Methods("PUT")
	authed.HandleFunc("/order/{id}/cancel", orderHandler.Cancel).Methods("PUT")
	authed.HandleFunc("/order/{id}/received", orderHandler.ConfirmReceived).Methods("PUT")

	authed.HandleFunc("/profile", userHandler.Profile).Methods("GET")
	authed.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PUT")
	authed.HandleFunc("/addresses", userHandler.ListAddresses).Methods("GET")
	authed.HandleFunc("/addresses", userHandler.CreateAddress).Methods("POST")
	authed.HandleFunc("/addresses/{id}", userHandler.UpdateAddress).Methods("PUT")
	authed.HandleFunc("/addresses/{id}", userHandler.DeleteAddress).Methods("DELETE")
	authed.HandleFunc("/addresses/{id}/default", userHandler.SetDefaultAddress).Methods("PUT")
	authed.HandleFunc("/wishlist", userHandler.Wishlist).Methods("GET")
	authed.HandleFunc("/wishlist/{productId}", userHandler.AddToWishlist).Methods("POST")
	authed.HandleFunc("/wishlist/{productId}", userHandler.RemoveFromWishlist).Methods("DELETE")

	return r, sweeper
}

// Protect wraps the router with CSRF protection when enabled.
func Protect(handler http.Handler, env configs.ENV) http.Handler {
	if !env.CSRFEnabled || env.CSRFKey == "" {
		return handler
	}
	return csrf.Protect(
		configs.DecodeKey(env.CSRFKey),
		csrf.Secure(env.AppEnv == "production"),
		csrf.Path("/"),
	)(handler)
}
