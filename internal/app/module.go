package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotp/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			Ctx:        a.ctx,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			UID:        a.uid,
			UUID:       a.uuid,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
			Mail:       a.mail,
			Messaging:  a.messaging,
			Storage:    a.storage,
			CacheConn:  a.cacheConn,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}
}
