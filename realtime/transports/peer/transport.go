// Package peer implements the realtime transport over a WebRTC data
// channel.
//
// Connecting runs two fallible phases. Credential exchange first: an HTTP
// POST to <endpoint>/sessions trades the API key for a short-lived token.
// Negotiation second: a PeerConnection is built (no ICE/STUN servers; the
// remote side does all the signaling, this is not peer-to-peer), the local
// media source is attached if one was supplied, the "oai-events" data
// channel is created before the offer, and the offer SDP is traded for the
// remote answer over HTTP using the short-lived token. Any failure in
// either phase tears down the partially-built state and restores the
// disconnected state, leaving the transport reusable.
//
// Negotiation completing and the data channel opening are two independent
// milestones: Connect returns once the answer is applied (connected), and
// the channel's own open callback advances the state to data channel
// opened. A Disconnect racing an in-flight Connect does not cancel the
// signaling HTTP calls; negotiation observes the state change when the
// call returns and tears down immediately.
package peer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/swooby/openai-realtime-go/realtime/session"
	"github.com/swooby/openai-realtime-go/realtime/transports"
)

const DefaultURL = "https://api.openai.com/v1/realtime"

// dataChannelLabel is fixed by the remote API.
const dataChannelLabel = "oai-events"

// iceGatherTimeout bounds host-candidate gathering before the offer is
// posted. With no ICE servers configured gathering is local and fast.
const iceGatherTimeout = 15 * time.Second

type Transport struct {
	*transports.Base

	mu    sync.Mutex
	pc    *webrtc.PeerConnection
	dc    *webrtc.DataChannel
	media transports.MediaSource
}

var _ transports.Transport = (*Transport)(nil)

func New(opts ...transports.Option) (*Transport, error) {
	base, err := transports.NewBase(DefaultURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Transport{Base: base}, nil
}

func (t *Transport) Connect(ctx context.Context, model string, config *session.Config) error {
	if err := t.BeginConnect(); err != nil {
		return err
	}

	attemptID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "peer connect")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", model),
		attribute.String("connect.attempt_id", attemptID),
	)

	token, err := t.createSession(ctx, model, config.Clone())
	if err != nil {
		err = fmt.Errorf("credential exchange failed: %w", err)
		span.RecordError(err)
		t.SetState(transports.StateDisconnected)
		return err
	}

	if err := t.negotiate(ctx, model, token); err != nil {
		err = fmt.Errorf("peer negotiation failed: %w", err)
		span.RecordError(err)
		t.teardownPeer()
		t.SetState(transports.StateDisconnected)
		return err
	}

	// The data-channel open callback may have fired during negotiation;
	// never regress from the opened state.
	t.CompareAndSetState(transports.StateConnecting, transports.StateConnected)
	logger.Debug("peer connection negotiated", "attempt_id", attemptID)
	return nil
}

// negotiate builds the PeerConnection and trades the local offer for the
// remote answer. On error the caller owns the teardown.
func (t *Transport) negotiate(ctx context.Context, model, token string) error {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return fmt.Errorf("failed to create peer connection: %w", err)
	}
	t.mu.Lock()
	t.pc = pc
	t.mu.Unlock()

	if handler := t.RemoteTrackHandler(); handler != nil {
		pc.OnTrack(handler)
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateFailed {
			t.EmitError(fmt.Errorf("peer connection failed"))
			t.Disconnect()
		}
	})

	// Attach local media before the offer so the SDP carries the track.
	if source := t.MediaSource(); source != nil {
		media, err := source(ctx)
		if err != nil {
			return fmt.Errorf("failed to open media source: %w", err)
		}
		t.mu.Lock()
		t.media = media
		t.mu.Unlock()
		for _, track := range media.Tracks() {
			if _, err := pc.AddTrack(track); err != nil {
				return fmt.Errorf("failed to attach local track: %w", err)
			}
		}
	} else {
		// Still request inbound audio when there is no outbound track.
		if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio,
			webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly},
		); err != nil {
			return fmt.Errorf("failed to add audio transceiver: %w", err)
		}
	}

	// The data channel must exist before the offer is generated; its own
	// lifecycle advances the state machine independently of negotiation.
	dc, err := pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		return fmt.Errorf("failed to create data channel: %w", err)
	}
	t.mu.Lock()
	t.dc = dc
	t.mu.Unlock()

	dc.OnOpen(func() {
		if t.IsConnectingOrConnected() {
			t.SetState(transports.StateDataChannelOpened)
		}
	})
	dc.OnClose(func() {
		t.Disconnect()
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if msg.IsString {
			t.EmitText(string(msg.Data))
		} else {
			t.EmitBinary(msg.Data)
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("failed to set local description: %w", err)
	}
	select {
	case <-gatherComplete:
	case <-time.After(iceGatherTimeout):
		return fmt.Errorf("ICE gathering timed out after %s", iceGatherTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	local := pc.LocalDescription()
	if local == nil || local.SDP == "" {
		return fmt.Errorf("empty local offer")
	}

	answerSDP, err := t.postOffer(ctx, model, token, local.SDP)
	if err != nil {
		return err
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answerSDP,
	}); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}

	return nil
}

// Send writes one JSON text frame to the data channel. It reports false
// without writing when the channel is not open.
func (t *Transport) Send(data []byte) (bool, error) {
	if !t.CanSend() {
		return false, nil
	}

	t.mu.Lock()
	dc := t.dc
	t.mu.Unlock()
	if dc == nil {
		return false, nil
	}

	if err := dc.SendText(string(data)); err != nil {
		return false, fmt.Errorf("failed to write to data channel: %w", err)
	}
	return true, nil
}

// Disconnect closes the data channel, then the peer connection, then the
// local media source, each guarded against double close. Idempotent.
func (t *Transport) Disconnect() {
	t.teardownPeer()
	t.SetState(transports.StateDisconnected)
}

func (t *Transport) teardownPeer() {
	t.mu.Lock()
	dc, pc, media := t.dc, t.pc, t.media
	t.dc, t.pc, t.media = nil, nil, nil
	t.mu.Unlock()

	if dc != nil {
		_ = dc.Close()
	}
	if pc != nil {
		_ = pc.Close()
	}
	if media != nil {
		_ = media.Close()
	}
}
