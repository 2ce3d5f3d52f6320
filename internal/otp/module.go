package otp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/otp/inbound"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/notify"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/store"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/template"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	libOTP "github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

const defaultCodeLength = 6

const (
	DeliveryMail   = "mail"
	DeliveryBroker = "broker"
)

var ErrBrokerRequired = errors.New("otp: broker delivery needs a messaging driver")

type Dependency struct {
	Ctx        context.Context
	Config     config.Config
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	UID        uid.NumberID
	UUID       uid.StringID
	Goroutine  *goroutine.Manager
	Validator  *validator.V10
	Router     *router.Router
	Mail       mail.Mail
	Messaging  messaging.Messaging
	Storage    storage.Reader
	CacheConn  redis.UniversalClient
}

func New(dep Dependency) error {
	repoStore, err := newStore(dep)
	if err != nil {
		return err
	}

	length := dep.Config.GetInt("modules.otp.length")
	if length == 0 {
		length = defaultCodeLength
	}
	code, err := libOTP.NewGenerator(length)
	if err != nil {
		return err
	}

	mailer := notify.NewMail(dep.Mail, dep.Instrument, notify.RetryConfig{
		Max:  uint64(max(dep.Config.GetInt("mail.retry.max"), 0)),
		Base: dep.Config.GetMillisecond("mail.retry.base_millis"),
	})

	deps := usecase.Dependency{
		RepoStore:  repoStore,
		Notifier:   mailer,
		Mailer:     mailer,
		Address:    dep.Validator,
		Code:       code,
		Config:     dep.Config,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}
	if dep.Config.GetString("modules.otp.delivery") == DeliveryBroker {
		if dep.Messaging == nil {
			return ErrBrokerRequired
		}
		deps.Notifier = notify.NewBroker(dep.Messaging, dep.UID, dep.Instrument)
	}
	if dep.Config.GetBool("modules.otp.template.enabled") && dep.Storage != nil {
		deps.Templates = template.NewObject(dep.Storage,
			dep.Config.GetString("modules.otp.template.bucket"),
			dep.Config.GetString("modules.otp.template.key"),
			dep.Instrument,
		)
	}

	uc, err := usecase.NewOTP(deps)
	if err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil && dep.Messaging != nil {
		var dedupe *idempotency.Tracker
		if dep.Config.GetBool("modules.otp.consumer_dedupe.enabled") && dep.CacheConn != nil {
			dedupe = idempotency.New(dep.CacheConn,
				idempotency.WithPrefix(dep.Config.GetString("modules.otp.consumer_dedupe.prefix")),
				idempotency.WithStateTTL(dep.Config.GetSecond("modules.otp.consumer_dedupe.ttl_seconds")),
			)
		}
		if dedupe != nil {
			inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dedupe, dep.Instrument)
		} else {
			inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, nil, dep.Instrument)
		}
	}

	return nil
}

func newStore(dep Dependency) (store.Store, error) {
	s, err := store.New(dep.Config.GetString("modules.otp.store.driver"), store.Options{
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Shards:     dep.Config.GetInt("modules.otp.store.shards"),
		Redis:      dep.CacheConn,
		Prefix:     dep.Config.GetString("modules.otp.store.redis_prefix"),
	})
	if err != nil {
		return nil, err
	}

	mem, ok := s.(*store.Memory)
	interval := dep.Config.GetSecond("modules.otp.store.reap_interval_seconds")
	if ok && interval > 0 && dep.Ctx != nil && dep.Goroutine != nil {
		if !dep.Goroutine.Every(dep.Ctx, "otp_store_reaper", interval, mem.Reap) {
			slog.Warn("failed to schedule otp store reaper")
		}
	}

	return s, nil
}
