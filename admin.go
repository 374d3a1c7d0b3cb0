// admin.go - admin view of live chart state and the emergency chart clear
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/session"
)

const adminCookie = "admin_token"

// AdminStats is what the dashboard and the stats API report.
type AdminStats struct {
	Sessions     int            `json:"sessions"`
	LiveCharts   int            `json:"live_charts"`
	Destroyed    uint64         `json:"destroyed"`
	Failures     uint64         `json:"destroy_failures"`
	HomeCharts   chart.Stats    `json:"home_charts"`
	SessionsInfo []session.Info `json:"session_info"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

type adminAuth struct {
	username string
	password string
	token    string
	salt     string
	defaults bool
	log      *zap.Logger
}

// Initialize admin system
func newAdminAuth(cfg config.Config, log *zap.Logger) *adminAuth {
	return &adminAuth{
		username: cfg.Admin.Username,
		password: cfg.Admin.Password,
		token:    generateAdminToken(),
		salt:     generateAdminToken(), // Use for IP hashing
		defaults: cfg.UsingDefaultAdmin(),
		log:      log.Named("admin"),
	}
}

func (a *adminAuth) announce() {
	a.log.Info("admin access available at /admin/login")
	if gin.Mode() == gin.DebugMode {
		a.log.Debug("admin token (dev only)", zap.String("token", a.token))
	}
	if a.defaults {
		a.log.Warn("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address so logs never carry the raw address (consistent per IP)
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *site) adminStats() AdminStats {
	stats := AdminStats{
		SessionsInfo: s.sessions.Snapshot(),
		HomeCharts:   s.home.stats(),
		GeneratedAt:  time.Now(),
	}
	stats.Sessions = len(stats.SessionsInfo)
	stats.LiveCharts = stats.HomeCharts.Live
	stats.Destroyed = stats.HomeCharts.Destroyed
	stats.Failures = stats.HomeCharts.DestroyFailures
	for _, info := range stats.SessionsInfo {
		stats.LiveCharts += info.Modal.Stats.Live
		stats.Destroyed += info.Modal.Stats.Destroyed
		stats.Failures += info.Modal.Stats.DestroyFailures
	}
	return stats
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, s *site) {
	a := s.admin
	a.announce()

	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	// Admin login handler
	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if a.checkCredentials(username, password) {
			// Set secure cookie (24 hours)
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
			a.log.Info("admin login", zap.String("client", a.hashIP(c.ClientIP())))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		a.log.Warn("failed admin login", zap.String("client", a.hashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	// Admin logout
	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		a.log.Info("admin logout", zap.String("client", a.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(a.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": s.adminStats(),
		})
	})

	// Admin API endpoints for HTMX/AJAX
	adminGroup.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.adminStats())
	})

	// Emergency chart clear for every visitor, plus a redraw of the home charts
	adminGroup.POST("/charts/force-clear", func(c *gin.Context) {
		n := s.sessions.ForceClearAll()
		s.home.redraw(s.lib, s.log)
		a.log.Warn("charts force-cleared",
			zap.Int("sessions", n),
			zap.String("client", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, gin.H{"message": "Charts cleared", "sessions": n})
	})

	// Drop idle sessions now instead of waiting for the sweeper
	adminGroup.POST("/sessions/sweep", func(c *gin.Context) {
		n := s.sessions.Sweep()
		c.JSON(http.StatusOK, gin.H{"message": "Idle sessions closed", "closed": n})
	})

	// Admin statistics export
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		// Set headers for file download
		c.Header("Content-Disposition", "attachment; filename=chart-stats.json")

		a.log.Info("admin stats exported", zap.String("client", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, s.adminStats())
	})
}
