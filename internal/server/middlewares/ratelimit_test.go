package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/querydesk/querydesk/api/v1"
	"github.com/querydesk/querydesk/internal/server/middlewares"
)

var _ = Describe("RateLimit", func() {
	var router *gin.Engine

	send := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.Use(middlewares.RateLimit(0.001, 2, v1.LoginPath))
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		router.POST(v1.LoginPath, ok)
		router.POST(v1.QueryPath, ok)
	})

	// Given a burst of two
	// When a client sends three login attempts in a row
	// Then the third one should be refused
	It("should refuse requests beyond the burst", func() {
		Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusOK))
		Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusOK))
		Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusTooManyRequests))
	})

	It("should keep one bucket per client", func() {
		Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusOK))
		Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusOK))
		Expect(send(v1.LoginPath, "10.0.0.2")).To(Equal(http.StatusOK))
	})

	It("should not limit other routes", func() {
		for range 5 {
			Expect(send(v1.QueryPath, "10.0.0.1")).To(Equal(http.StatusOK))
		}
	})

	It("should be disabled with a zero rate", func() {
		router = gin.New()
		router.Use(middlewares.RateLimit(0, 1))
		router.POST(v1.LoginPath, func(c *gin.Context) { c.Status(http.StatusOK) })

		for range 5 {
			Expect(send(v1.LoginPath, "10.0.0.1")).To(Equal(http.StatusOK))
		}
	})
})

var _ = Describe("RateLimiter", func() {
	It("should allow the burst then refuse", func() {
		limiter := middlewares.NewRateLimiter(0.001, 1)

		Expect(limiter.Allow("a")).To(BeTrue())
		Expect(limiter.Allow("a")).To(BeFalse())
		Expect(limiter.Allow("b")).To(BeTrue())
	})
})
