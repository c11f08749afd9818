// Package callpeer implements the per-participant call state machine that
// sits on top of the signaling relay: offer/answer negotiation order,
// candidate queueing, and the single-call-per-room policy. The relay side
// stays a stateless forwarder; all call state lives here.
package callpeer

import (
	"encoding/json"
	"errors"

	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/proto"
)

// State tracks where this participant is in a call.
type State int

const (
	// StateIdle means no call is in progress.
	StateIdle State = iota
	// StateOffering means we sent an offer and await the answer.
	StateOffering
	// StateRinging means we received an offer and await user accept/decline.
	StateRinging
	// StateConnected means negotiation completed.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOffering:
		return "offering"
	case StateRinging:
		return "ringing"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when starting a call while one is in progress.
	ErrBusy = errors.New("call already in progress")
	// ErrNotRinging is returned when accepting or declining without a
	// pending offer.
	ErrNotRinging = errors.New("no incoming call")
)

// Session is the local media session, the counterpart of a browser peer
// connection. Implementations own media; the peer only sequences them.
type Session interface {
	// CreateOffer produces the local session description to send.
	CreateOffer() (json.RawMessage, error)
	// CreateAnswer produces the answering session description. Only
	// valid after SetRemoteDescription.
	CreateAnswer() (json.RawMessage, error)
	// SetRemoteDescription installs the peer's session description.
	SetRemoteDescription(desc json.RawMessage) error
	// AddICECandidate applies one remote connectivity candidate. Must
	// not be called before SetRemoteDescription.
	AddICECandidate(candidate json.RawMessage) error
	// Close releases local media resources.
	Close()
}

// SessionFactory creates a fresh session for each call.
type SessionFactory func() (Session, error)

// SendFunc emits a signaling event through the relay.
type SendFunc func(event string, payload any) error

// Peer drives one participant's side of at most one active call.
// Not safe for concurrent use; drive it from a single event loop.
type Peer struct {
	userID     string
	name       string
	newSession SessionFactory
	send       SendFunc

	state        State
	room         string
	sess         Session
	remoteSet    bool
	pendingOffer *proto.OfferSignal
	iceQueue     []json.RawMessage
}

// New constructs an idle peer for the given user.
func New(userID, name string, factory SessionFactory, send SendFunc) *Peer {
	return &Peer{
		userID:     userID,
		name:       name,
		newSession: factory,
		send:       send,
	}
}

// State returns the current call state.
func (p *Peer) State() State { return p.state }

// Room returns the active call's room name, or "" when idle.
func (p *Peer) Room() string { return p.room }

// PendingFrom returns the offering user's id and name while ringing.
func (p *Peer) PendingFrom() (id, name string) {
	if p.pendingOffer == nil {
		return "", ""
	}
	return p.pendingOffer.From, p.pendingOffer.FromName
}

// Call starts an outgoing call to the given user. The room name is derived
// deterministically, so the callee computes the same name independently.
func (p *Peer) Call(toID string) error {
	if p.state != StateIdle {
		return ErrBusy
	}

	sess, err := p.newSession()
	if err != nil {
		return err
	}
	offer, err := sess.CreateOffer()
	if err != nil {
		sess.Close()
		return err
	}

	room := core.DirectRoomName(p.userID, toID)
	if err := p.send(proto.InboundTypeOffer, proto.OfferSignal{
		Room:     room,
		Offer:    offer,
		From:     p.userID,
		FromName: p.name,
		To:       toID,
	}); err != nil {
		sess.Close()
		return err
	}

	p.sess = sess
	p.room = room
	p.state = StateOffering
	return nil
}

// HandleOffer processes an incoming offer. Offers addressed to someone
// else are ignored. An offer arriving while a call is in progress gets an
// immediate webrtc-end for the offered room; the current call is untouched.
func (p *Peer) HandleOffer(sig proto.OfferSignal) error {
	if sig.To != p.userID {
		return nil
	}
	if p.state != StateIdle {
		// At most one active call per room at a time.
		return p.send(proto.InboundTypeEnd, proto.EndSignal{Room: sig.Room})
	}

	p.room = sig.Room
	p.pendingOffer = &sig
	p.state = StateRinging
	return nil
}

// Accept answers the buffered offer: installs the remote description,
// flushes queued candidates in arrival order, and sends the answer.
func (p *Peer) Accept() error {
	if p.state != StateRinging || p.pendingOffer == nil {
		return ErrNotRinging
	}

	sess, err := p.newSession()
	if err != nil {
		return err
	}
	if err := sess.SetRemoteDescription(p.pendingOffer.Offer); err != nil {
		sess.Close()
		return err
	}
	p.sess = sess
	p.remoteSet = true
	if err := p.flushCandidates(); err != nil {
		p.reset()
		return err
	}

	answer, err := sess.CreateAnswer()
	if err != nil {
		p.reset()
		return err
	}
	if err := p.send(proto.InboundTypeAnswer, proto.AnswerSignal{
		Room:     p.room,
		Answer:   answer,
		From:     p.userID,
		FromName: p.name,
		To:       p.pendingOffer.From,
	}); err != nil {
		p.reset()
		return err
	}

	p.pendingOffer = nil
	p.state = StateConnected
	return nil
}

// Decline rejects the buffered offer and returns to idle.
func (p *Peer) Decline() error {
	if p.state != StateRinging {
		return ErrNotRinging
	}
	room := p.room
	p.reset()
	return p.send(proto.InboundTypeEnd, proto.EndSignal{Room: room})
}

// HandleAnswer completes an outgoing call. Answers for other rooms, or
// arriving in any state but offering, are ignored.
func (p *Peer) HandleAnswer(sig proto.AnswerSignal) error {
	if p.state != StateOffering || sig.Room != p.room {
		return nil
	}
	if err := p.sess.SetRemoteDescription(sig.Answer); err != nil {
		return err
	}
	p.remoteSet = true
	if err := p.flushCandidates(); err != nil {
		return err
	}
	p.state = StateConnected
	return nil
}

// HandleCandidate applies or queues one remote candidate. A candidate must
// never reach the session before the remote description it pairs with, so
// early arrivals are queued and flushed once the description is set.
func (p *Peer) HandleCandidate(sig proto.ICESignal) error {
	if p.state == StateIdle || sig.Room != p.room {
		return nil
	}
	if sig.To != "" && sig.To != p.userID {
		return nil
	}
	if !p.remoteSet {
		p.iceQueue = append(p.iceQueue, sig.Candidate)
		return nil
	}
	return p.sess.AddICECandidate(sig.Candidate)
}

// HandleEnd tears the call down if it addresses the active room.
func (p *Peer) HandleEnd(sig proto.EndSignal) {
	if p.state == StateIdle || sig.Room != p.room {
		return
	}
	p.reset()
}

// HangUp ends the active call locally and notifies the room.
func (p *Peer) HangUp() error {
	if p.state == StateIdle {
		return nil
	}
	room := p.room
	p.reset()
	return p.send(proto.InboundTypeEnd, proto.EndSignal{Room: room})
}

func (p *Peer) flushCandidates() error {
	for _, candidate := range p.iceQueue {
		if err := p.sess.AddICECandidate(candidate); err != nil {
			return err
		}
	}
	p.iceQueue = nil
	return nil
}

func (p *Peer) reset() {
	if p.sess != nil {
		p.sess.Close()
	}
	p.sess = nil
	p.room = ""
	p.remoteSet = false
	p.pendingOffer = nil
	p.iceQueue = nil
	p.state = StateIdle
}
