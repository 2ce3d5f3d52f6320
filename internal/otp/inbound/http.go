package inbound

import "github.com/shandysiswandi/gotp/internal/pkg/router"

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp/generate", end.Generate)
	r.POST("/api/v1/otp/verify", end.Verify)
}
