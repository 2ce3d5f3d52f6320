package messaging

type consumeOptions struct {
	group       string
	concurrency int
}

// ConsumeOption tunes a subscription.
type ConsumeOption func(*consumeOptions)

func buildConsumeOptions(opts []ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	return co
}

// WithGroup names the set of consumers that share deliveries: the NSQ
// channel, NATS queue group, Kafka consumer group or Pub/Sub subscription.
func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

// WithConcurrency sets how many handler calls may run at once.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}
