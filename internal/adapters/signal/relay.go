package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/protocol"
)

// Offer, answer and ICE candidate relaying is pure store-and-forward:
// look up the connection holding the target peer id in the sender's
// room and pass the payload on with the sender's peer id attached. An
// absent target means the message is silently dropped; the peer raced
// its own departure.

func (ctl *Controller) handleOffer(cl *app.Client, env protocol.Envelope) {
	var p protocol.Offer
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	ctl.forward(cl, protocol.EvtOffer, p.TargetPeerID, func(sender string) any {
		return protocol.ForwardedOffer{SDP: p.SDP, SenderPeerID: sender}
	})
}

func (ctl *Controller) handleAnswer(cl *app.Client, env protocol.Envelope) {
	var p protocol.Offer
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	ctl.forward(cl, protocol.EvtAnswer, p.TargetPeerID, func(sender string) any {
		return protocol.ForwardedOffer{SDP: p.SDP, SenderPeerID: sender}
	})
}

func (ctl *Controller) handleICECandidate(cl *app.Client, env protocol.Envelope) {
	var p protocol.ICECandidate
	if err := env.Bind(&p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	ctl.forward(cl, protocol.EvtICECandidate, p.TargetPeerID, func(sender string) any {
		return protocol.ForwardedCandidate{Candidate: p.Candidate, SenderPeerID: sender}
	})
}

func (ctl *Controller) forward(cl *app.Client, t protocol.EventType, targetPeerID string, build func(senderPeerID string) any) {
	target, sender, ok := ctl.Coord.RelayTarget(cl.ID, targetPeerID)
	if !ok {
		return
	}
	frame, err := protocol.Encode(t, build(sender))
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", string(t)).Msg("encode forward")
		return
	}
	_ = target.TrySend(frame)
}
