package signal

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// handleVerifyAdmin checks a password attempt against the configured
// bcrypt hash. The comparison runs on this connection's read goroutine,
// so the deliberately slow hash never stalls room-state handling.
func (ctl *Controller) handleVerifyAdmin(cl *app.Client, c *wsConn, env protocol.Envelope) {
	var p protocol.AdminPassword
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad admin password payload")
		ctl.send(c, protocol.EvtAdminVerified, protocol.AdminVerified{Success: false})
		return
	}

	ok := ctl.AdminHash != "" &&
		bcrypt.CompareHashAndPassword([]byte(ctl.AdminHash), []byte(p.Password)) == nil
	if ok {
		log.Info().Str("module", "signal").Str("user", string(cl.UserID)).
			Str("addr", cl.Addr).Msg("admin login successful")
	} else {
		log.Warn().Str("module", "signal").Str("user", string(cl.UserID)).
			Str("addr", cl.Addr).Msg("admin login failed")
	}
	ctl.send(c, protocol.EvtAdminVerified, protocol.AdminVerified{Success: ok})
}
