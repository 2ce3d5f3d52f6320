package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultValidMinutes = 1
	defaultMaxAttempts  = 10
	defaultSubject      = "Your OTP Code"
)

type repoStore interface {
	Put(ctx context.Context, identity, code string, maxAttempts int, ttl time.Duration) error
	CheckAndConsume(ctx context.Context, identity, candidate string) (entity.CheckOutcome, error)
}

type notifier interface {
	Send(ctx context.Context, d entity.Delivery) error
}

type addressValidator interface {
	IsSyntacticallyValid(address string) bool
	MatchesAllowedDomain(address, suffix string) bool
}

type codeGenerator interface {
	Generate() (string, error)
}

type templateSource interface {
	Template(ctx context.Context) (string, error)
}

type Usecase struct {
	repoStore repoStore
	notifier  notifier
	mailer    notifier
	address   addressValidator
	code      codeGenerator
	templates templateSource
	cfg       config.Config
	validator validator.Validator
	ins       instrument.Instrumentation

	generateCounter metric.Int64Counter
	verifyCounter   metric.Int64Counter

	layoutMu sync.Mutex
	layout   *layout
}

var ErrMissingDependency = errors.New("otp usecase: missing dependency")

type Dependency struct {
	RepoStore repoStore
	// Notifier is used by Generate. It may publish to a broker.
	Notifier notifier
	// Mailer sends directly and backs Dispatch. Defaults to Notifier.
	Mailer     notifier
	Address    addressValidator
	Code       codeGenerator
	Templates  templateSource
	Config     config.Config
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func (dep Dependency) validate() error {
	missing := lo.Compact([]string{
		lo.Ternary(dep.RepoStore == nil, "RepoStore", ""),
		lo.Ternary(dep.Notifier == nil, "Notifier", ""),
		lo.Ternary(dep.Address == nil, "Address", ""),
		lo.Ternary(dep.Code == nil, "Code", ""),
		lo.Ternary(dep.Config == nil, "Config", ""),
		lo.Ternary(dep.Validator == nil, "Validator", ""),
		lo.Ternary(dep.Instrument == nil, "Instrument", ""),
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDependency, strings.Join(missing, ", "))
	}
	return nil
}

func NewOTP(dep Dependency) (*Usecase, error) {
	if err := dep.validate(); err != nil {
		return nil, err
	}
	if dep.Mailer == nil {
		dep.Mailer = dep.Notifier
	}

	s := &Usecase{
		repoStore: dep.RepoStore,
		notifier:  dep.Notifier,
		mailer:    dep.Mailer,
		address:   dep.Address,
		code:      dep.Code,
		templates: dep.Templates,
		cfg:       dep.Config,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}

	meter := dep.Instrument.Meter("otp.usecase")
	var err error
	s.generateCounter, err = meter.Int64Counter("otp.generate.results", metric.WithDescription("OTP generate results by status"))
	if err != nil {
		slog.Error("failed to create otp generate counter", "error", err)
	}
	s.verifyCounter, err = meter.Int64Counter("otp.verify.results", metric.WithDescription("OTP verify results by status"))
	if err != nil {
		slog.Error("failed to create otp verify counter", "error", err)
	}

	return s, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, status string) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (s *Usecase) validMinutes() int {
	if v := s.cfg.GetInt("modules.otp.valid_minutes"); v > 0 {
		return v
	}
	return defaultValidMinutes
}

func (s *Usecase) maxAttempts() int {
	if v := s.cfg.GetInt("modules.otp.max_attempts"); v > 0 {
		return v
	}
	return defaultMaxAttempts
}

func (s *Usecase) subject() string {
	if v := s.cfg.GetString("modules.otp.subject"); v != "" {
		return v
	}
	return defaultSubject
}

// allowedDomain passes when no suffix is configured or any suffix matches.
func (s *Usecase) allowedDomain(email string) bool {
	suffixes := s.cfg.GetArray("modules.otp.allowed_domains")
	if len(suffixes) == 0 {
		return true
	}
	return lo.SomeBy(suffixes, func(suffix string) bool {
		return s.address.MatchesAllowedDomain(email, suffix)
	})
}

// send calls n and reports a panic as an error.
func send(ctx context.Context, n notifier, d entity.Delivery) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("notifier panic: %v", rvr)
		}
	}()
	return n.Send(ctx, d)
}
