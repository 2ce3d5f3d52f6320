package inbound

import (
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Generate issues an OTP and emails it.
// @Summary Generate OTP
// @Description Generates a numeric OTP for the email address and sends it by email. Any previous code for the address is replaced.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Email address"
// @Success 200 {object} router.successResponse{data=ResultResponse} "email_ok"
// @Failure 400 {object} router.successResponse{data=ResultResponse} "email_invalid or email_fail"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/generate [post]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	res, err := h.uc.Generate(r.Context(), usecase.GenerateInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return newResultResponse(res), nil
}

// Verify checks a submitted OTP.
// @Summary Verify OTP
// @Description Verifies the OTP for the email address. A wrong code consumes one attempt.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Email address and code"
// @Success 200 {object} router.successResponse{data=ResultResponse} "otp_ok"
// @Failure 400 {object} router.successResponse{data=ResultResponse} "otp_fail, otp_timeout or remaining attempts"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	res, err := h.uc.Verify(r.Context(), usecase.VerifyInput{Email: req.Email, Code: req.OTP})
	if err != nil {
		return nil, err
	}

	return newResultResponse(res), nil
}
