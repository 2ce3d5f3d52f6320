package entity

// Delivery is one rendered OTP email ready for a notifier.
type Delivery struct {
	Email   string
	Subject string
	Body    string
}
