package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eyewear-store/internal/auth"
	"eyewear-store/internal/cache"
	"eyewear-store/internal/config"
	"eyewear-store/internal/database"
	"eyewear-store/internal/handlers"
	"eyewear-store/internal/middleware"
	"eyewear-store/internal/storage"
)

func main() {
	config.Load()
	if err := config.AppEnv.Required(); err != nil {
		log.Fatal(err)
	}

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureIndexes(db); err != nil {
		log.Printf("[DB] [WARN] index warning: %v", err)
	}

	var facetCache *cache.FacetCache
	if config.AppEnv.RedisEnabled() {
		redisClient, err := cache.Connect(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword)
		if err != nil {
			log.Printf("[CACHE] [WARN] redis unavailable, facets served uncached: %v", err)
		} else {
			facetCache = cache.NewFacetCache(redisClient, config.AppEnv.FacetCacheTTL)
			log.Println("[CACHE] [INFO] facet cache enabled:", config.AppEnv.RedisAddr)
		}
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID())

	var images storage.ImageStore
	if config.AppEnv.MinioEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  config.AppEnv.MinioEndpoint,
			AccessKey: config.AppEnv.MinioAccessKey,
			SecretKey: config.AppEnv.MinioSecretKey,
			Bucket:    config.AppEnv.MinioBucket,
			UseSSL:    config.AppEnv.MinioUseSSL,
		})
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		images = minioStore
		log.Println("[UPLOAD] [INFO] images stored in bucket:", config.AppEnv.MinioBucket)
	} else {
		images = storage.NewLocalStore(config.AppEnv.UploadDir, config.AppEnv.PublicBaseURL)
		r.Static("/uploads", config.AppEnv.UploadDir)
		log.Println("[UPLOAD] [INFO] images stored on disk:", config.AppEnv.UploadDir)
	}

	issuer := auth.NewIssuer(config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL)
	refreshTTL := config.AppEnv.RefreshTokenTTL

	r.GET("/health", handlers.Health(db))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProductByID(db))
	r.GET("/facets", handlers.GetFacets(db, facetCache))
	r.GET("/categories", handlers.GetCategories(db))

	r.POST("/auth/signup", handlers.Signup(db, issuer, refreshTTL))
	r.POST("/auth/signin", handlers.Signin(db, issuer, refreshTTL))
	r.POST("/auth/refresh", handlers.Refresh(db, issuer, refreshTTL))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(issuer), handlers.GetMe(db))

	user := r.Group("/")
	user.Use(middleware.UserAuth(issuer))
	{
		user.PUT("/users/update", handlers.UpdateProfile(db))
		user.GET("/users/addresses", handlers.GetUserAddresses(db))
		user.POST("/users/addresses", handlers.CreateUserAddress(db))
		user.PUT("/users/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/users/addresses/:id", handlers.DeleteUserAddress(db))
		user.PUT("/users/addresses/:id/default", handlers.SetDefaultAddress(db))

		user.GET("/cart", handlers.GetCart(db))
		user.POST("/cart", handlers.AddToCart(db))
		user.PUT("/cart/:productId", handlers.UpdateCartItem(db))
		user.DELETE("/cart/:productId", handlers.RemoveFromCart(db))
		user.DELETE("/cart", handlers.ClearCart(db))

		user.GET("/wishlist", handlers.GetWishlist(db))
		user.POST("/wishlist", handlers.AddToWishlist(db))
		user.DELETE("/wishlist/:productId", handlers.RemoveFromWishlist(db))

		user.POST("/orders", handlers.Checkout(db))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:id", handlers.GetMyOrder(db))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(db, issuer))
	{
		admin.GET("/products", handlers.AdminListProducts(db))
		admin.POST("/products", handlers.CreateCatalogItem(db, facetCache))
		admin.PUT("/products/:id", handlers.UpdateCatalogItem(db, facetCache))
		admin.DELETE("/products/:id", handlers.DeleteCatalogItem(db, facetCache, images))

		admin.POST("/uploads", handlers.UploadProductImage(images))

		admin.GET("/orders", handlers.AdminListOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
