package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kate44725/computing-management/config"
	"github.com/Kate44725/computing-management/internal/api/handler"
	"github.com/Kate44725/computing-management/internal/api/middleware"
	"github.com/Kate44725/computing-management/internal/policy"
	"github.com/Kate44725/computing-management/pkg/jwt"
	"github.com/Kate44725/computing-management/pkg/metrics"
	"github.com/Kate44725/computing-management/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.SecurityHeaders(cfg.Server.Security))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow,
					middleware.ClientIPKey, middleware.LoginUsernameKey),
				h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/auth/permissions", h.Auth.Permissions)

			// 配额申请与审批
			requests := authorized.Group("/quota-requests")
			{
				requests.POST("", middleware.FeatureAuth(policy.FeatureQuotaApply), h.QuotaRequest.Submit)
				requests.GET("/mine", middleware.FeatureAuth(policy.FeatureQuotaApplyView), h.QuotaRequest.ListMine)
				requests.GET("", middleware.FeatureAuth(policy.FeatureQuotaApprove), h.QuotaRequest.ListAll)
				requests.GET("/pending-count", middleware.FeatureAuth(policy.FeatureQuotaApprove), h.QuotaRequest.PendingCount)
				requests.POST("/batch-decision", middleware.FeatureAuth(policy.FeatureQuotaApprove), h.QuotaRequest.DecideBatch)
				requests.GET("/:id", middleware.FeatureAuth(policy.FeatureQuotaApplyView), h.QuotaRequest.Get)
				requests.POST("/:id/decision", middleware.FeatureAuth(policy.FeatureQuotaApprove), h.QuotaRequest.Decide)
			}

			// 项目挂靠
			affiliation := authorized.Group("/affiliation")
			{
				affiliation.GET("/current", h.Affiliation.Current)
				affiliation.GET("/history", h.Affiliation.History)
				affiliation.GET("/candidates", h.Affiliation.Candidates)
				affiliation.POST("/switch", h.Affiliation.Switch)
			}

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.FeatureAuth(policy.FeatureUserView), h.User.ListUsers)
				users.POST("", middleware.FeatureAuth(policy.FeatureUserCreate), h.User.CreateUser)
			}

			// 项目模块
			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.ListProjects)
				projects.POST("", middleware.FeatureAuth(policy.FeatureQuotaAllocate), h.Project.CreateProject)
			}

			authorized.GET("/departments", h.Department.ListDepartments)
			authorized.GET("/zones", middleware.FeatureAuth(policy.FeatureZoneView), h.Zone.ListZones)
		}
	}

	return r
}
