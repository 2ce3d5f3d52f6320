package event

const OTPDeliveryDestination string = "otp_delivery"
const OTPDeliveryConsumerMailer string = "otp_delivery_mailer"

// OTPDeliveryMessage carries a rendered OTP email to the mailer consumer.
// CorrelationID duplicates the cID header for brokers without headers.
type OTPDeliveryMessage struct {
	EventID       int64  `json:"event_id"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"html_body"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
