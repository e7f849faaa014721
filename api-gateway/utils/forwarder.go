package utils

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/api-gateway/middlewares"
	"github.com/Khizarkk7/storefront-backend/services/common/logger"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

// Forwarder proxies a request to one upstream service, path and query
// unchanged.
type Forwarder struct {
	TargetBase string
	client     *http.Client
	log        *zap.Logger
}

func NewForwarder(targetBase string, timeout time.Duration, log *zap.Logger) *Forwarder {
	return &Forwarder{
		TargetBase: strings.TrimRight(targetBase, "/"),
		client: &http.Client{
			Timeout: timeout,
			// redirects (wallet callbacks) go back to the browser
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
		log: log,
	}
}

func (f *Forwarder) Handle(c *gin.Context) {
	log := logger.For(c.Request.Context(), f.log)

	targetURL := f.TargetBase + c.Request.URL.EscapedPath()
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		log.Error("Failed to create forward request", zap.String("url", targetURL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}
	req.ContentLength = c.Request.ContentLength

	for k, v := range c.Request.Header {
		if hopByHop[strings.ToLower(k)] {
			continue
		}
		req.Header[k] = append([]string(nil), v...)
	}
	// the token stays at the edge
	req.Header.Del("Authorization")

	if claims := middlewares.Claims(c); claims != nil {
		req.Header.Set(middleware.HeaderUserID, claims.UserID)
		req.Header.Set(middleware.HeaderUserRole, claims.Role)
		req.Header.Set(middleware.HeaderUserEmail, claims.Email)
		if claims.Name != "" {
			req.Header.Set(middleware.HeaderUserName, claims.Name)
		}
		if claims.ShopID != "" {
			req.Header.Set(middleware.HeaderShopID, claims.ShopID)
		}
	}
	if rid := logger.RequestID(c.Request.Context()); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}
	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		if prior := c.Request.Header.Get("X-Forwarded-For"); prior != "" {
			ip = prior + ", " + ip
		}
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("Failed to forward request", zap.String("url", targetURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "service unreachable"})
		return
	}
	defer resp.Body.Close()

	out := c.Writer.Header()
	for k, v := range resp.Header {
		lower := strings.ToLower(k)
		// CORS belongs to the gateway
		if strings.HasPrefix(lower, "access-control-") || hopByHop[lower] {
			continue
		}
		out.Del(k)
		for _, value := range v {
			out.Add(k, value)
		}
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Warn("Failed to copy response body", zap.String("url", targetURL), zap.Error(err))
	}
}
