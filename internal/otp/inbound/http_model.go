package inbound

type GenerateRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResultResponse is the data part of both OTP responses. Message and
// StatusCode are read by the router to build the envelope.
type ResultResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`

	message string
	code    int
}

func (r ResultResponse) Message() string { return r.message }

func (r ResultResponse) StatusCode() int { return r.code }

type result interface {
	OK() bool
	Status() string
	Message() string
	StatusCode() int
}

func newResultResponse(r result) ResultResponse {
	return ResultResponse{
		Success: r.OK(),
		Status:  r.Status(),
		message: r.Message(),
		code:    r.StatusCode(),
	}
}
