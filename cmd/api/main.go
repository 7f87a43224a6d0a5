package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nurse-assist/nai-admin-api/api/swagger"
	"github.com/nurse-assist/nai-admin-api/internal/handler"
	internalmiddleware "github.com/nurse-assist/nai-admin-api/internal/middleware"
	"github.com/nurse-assist/nai-admin-api/internal/models"
	"github.com/nurse-assist/nai-admin-api/internal/repository"
	"github.com/nurse-assist/nai-admin-api/internal/service"
	"github.com/nurse-assist/nai-admin-api/pkg/cache"
	"github.com/nurse-assist/nai-admin-api/pkg/config"
	"github.com/nurse-assist/nai-admin-api/pkg/database"
	"github.com/nurse-assist/nai-admin-api/pkg/logger"
	corsmiddleware "github.com/nurse-assist/nai-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nurse-assist/nai-admin-api/pkg/middleware/requestid"
)

// @title Nurse Assist Admin API
// @version 1.0.0
// @description Admin backend for Nurse Assist International
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	recycleRepo := repository.NewRecycleBinRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()

	auditSvc := service.NewAuditLogService(auditRepo, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:  studentRepo,
		Courses:   courseRepo,
		Leads:     leadRepo,
		Referrals: referralRepo,
		Payments:  paymentRepo,
		Cache:     cacheSvc,
		Logger:    logr,
		Config:    service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	recycleSvc := service.NewRecycleBinService(recycleRepo, service.RestoreTargets{
		Students:  studentRepo,
		Courses:   courseRepo,
		Leads:     leadRepo,
		Referrals: referralRepo,
		Payments:  paymentRepo,
	}, auditSvc, dashboardSvc, cfg.RecycleBin.ListLimit, logr)

	studentSvc := service.NewStudentService(studentRepo, recycleSvc, auditSvc, dashboardSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, recycleSvc, auditSvc, dashboardSvc, validate, logr)
	leadSvc := service.NewLeadService(leadRepo, recycleSvc, auditSvc, dashboardSvc, validate, logr)
	referralSvc := service.NewReferralService(referralRepo, recycleSvc, auditSvc, dashboardSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, recycleSvc, auditSvc, dashboardSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)

	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "nai-admin-api",
	})

	reportSvc := service.NewReportService(studentRepo, leadRepo, paymentRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	leadHandler := handler.NewLeadHandler(leadSvc)
	referralHandler := handler.NewReferralHandler(referralSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	recycleHandler := handler.NewRecycleBinHandler(recycleSvc)
	auditHandler := handler.NewAuditLogHandler(auditSvc, cfg.Audit.PageSize)
	userHandler := handler.NewUserHandler(userSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authSecured := auth.Group("", internalmiddleware.JWT(authSvc))
	authSecured.POST("/logout", authHandler.Logout)
	authSecured.POST("/change-password", authHandler.ChangePassword)
	authSecured.GET("/me", authHandler.Me)

	secured := api.Group("", internalmiddleware.JWT(authSvc))

	anyStaff := internalmiddleware.RequireRoles(models.RoleOwner, models.RoleAdmin, models.RoleStaff)
	adminOnly := internalmiddleware.RequireRoles(models.RoleOwner, models.RoleAdmin)

	students := secured.Group("/students", anyStaff, internalmiddleware.Audit(auditSvc, models.TableStudents))
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", studentHandler.Create)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", adminOnly, studentHandler.Delete)

	courses := secured.Group("/courses", anyStaff, internalmiddleware.Audit(auditSvc, models.TableCourses))
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", courseHandler.Create)
	courses.PUT("/:id", courseHandler.Update)
	courses.DELETE("/:id", adminOnly, courseHandler.Delete)

	leads := secured.Group("/leads", anyStaff, internalmiddleware.Audit(auditSvc, models.TableLeads))
	leads.GET("", leadHandler.List)
	leads.GET("/:id", leadHandler.Get)
	leads.POST("", leadHandler.Create)
	leads.PUT("/:id", leadHandler.Update)
	leads.DELETE("/:id", adminOnly, leadHandler.Delete)

	referrals := secured.Group("/referrals", anyStaff, internalmiddleware.Audit(auditSvc, models.TableReferrals))
	referrals.GET("", referralHandler.List)
	referrals.GET("/:id", referralHandler.Get)
	referrals.POST("", referralHandler.Create)
	referrals.PUT("/:id", referralHandler.Update)
	referrals.DELETE("/:id", adminOnly, referralHandler.Delete)

	payments := secured.Group("/payments", anyStaff, internalmiddleware.Audit(auditSvc, models.TablePayments))
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.POST("", paymentHandler.Create)
	payments.PUT("/:id", paymentHandler.Update)
	payments.DELETE("/:id", adminOnly, paymentHandler.Delete)

	recycleBin := secured.Group("/recycle-bin", adminOnly)
	recycleBin.GET("", recycleHandler.List)
	recycleBin.POST("/:id/restore", recycleHandler.Restore)
	recycleBin.DELETE("/:id", recycleHandler.Purge)

	auditLogs := secured.Group("/audit-logs", adminOnly)
	auditLogs.GET("", auditHandler.List)

	users := secured.Group("/users", internalmiddleware.Audit(auditSvc, "users"))
	users.GET("", adminOnly, userHandler.List)
	users.GET("/:id", internalmiddleware.RBAC(string(models.RoleOwner), string(models.RoleAdmin), internalmiddleware.RoleSelf), userHandler.Get)
	users.POST("", adminOnly, userHandler.Create)
	users.PUT("/:id", adminOnly, userHandler.Update)
	users.POST("/:id/reset-password", adminOnly, userHandler.ResetPassword)
	users.DELETE("/:id", adminOnly, userHandler.Delete)

	if cfg.Dashboard.Enabled {
		secured.GET("/dashboard", anyStaff, dashboardHandler.Summary)
	}

	if cfg.Reports.Enabled {
		secured.GET("/reports/:kind", adminOnly, reportHandler.Generate)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
