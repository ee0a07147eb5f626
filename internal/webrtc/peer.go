// Package webrtc exposes the conversation pipeline over a WebRTC data
// channel. The channel carries the same JSON envelopes as the WebSocket
// transport; binary frames are PCM16 voice chunks in both directions.
package webrtc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/internal/audio"
	ws "github.com/prushal/voicegate/internal/websocket"
	"github.com/prushal/voicegate/usecase"
)

const (
	dataChannelLabel = "chat"

	// 20ms of PCM16 mono at 16kHz.
	frameDuration = 20 * time.Millisecond
	frameBytes    = 640
)

// Peer is one WebRTC client connection.
type Peer struct {
	pc        *webrtc.PeerConnection
	sessionID string
	svc       *usecase.ConversationService
	session   *usecase.Session
	logger    *zap.Logger

	dc *webrtc.DataChannel

	// Outbound PCM utterances waiting to be paced onto the channel.
	audioQueue chan []byte
	done       chan struct{}
}

var _ usecase.Emitter = (*Peer)(nil)

// NewPeer builds a peer connection, answers the client's SDP offer, and
// wires the data channel into the pipeline. The returned answer already
// includes gathered ICE candidates.
func NewPeer(svc *usecase.ConversationService, sessionID string, offer webrtc.SessionDescription, logger *zap.Logger) (*Peer, *webrtc.SessionDescription, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create peer connection: %w", err)
	}

	p := &Peer{
		pc:         pc,
		sessionID:  sessionID,
		svc:        svc,
		logger:     logger,
		audioQueue: make(chan []byte, 16),
		done:       make(chan struct{}),
	}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != dataChannelLabel {
			logger.Warn("Ignoring unexpected data channel",
				zap.String("sessionID", sessionID),
				zap.String("label", dc.Label()))
			return
		}
		p.dc = dc

		dc.OnOpen(func() {
			p.session = svc.OpenSession(sessionID, p)
			go p.paceAudio()
		})
		dc.OnMessage(p.handleMessage)
		dc.OnClose(func() {
			p.Close()
		})
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Info("Peer connection state changed",
			zap.String("sessionID", sessionID),
			zap.String("state", state.String()))
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			p.Close()
		}
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return nil, nil, fmt.Errorf("failed to set remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return nil, nil, fmt.Errorf("failed to create answer: %w", err)
	}

	// Block until ICE gathering completes so the answer is self-contained
	// and no trickle signaling channel is needed.
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return nil, nil, fmt.Errorf("failed to set local description: %w", err)
	}
	<-gathered

	return p, pc.LocalDescription(), nil
}

// Close tears down the session and the underlying peer connection.
func (p *Peer) Close() {
	select {
	case <-p.done:
		return
	default:
		close(p.done)
	}

	if p.session != nil {
		p.svc.CloseSession(p.session)
	}
	if err := p.pc.Close(); err != nil {
		p.logger.Warn("Failed to close peer connection",
			zap.String("sessionID", p.sessionID),
			zap.Error(err))
	}
}

// Emit marshals one event into the shared JSON envelope and sends it on
// the data channel. Reply audio is additionally decoded and queued for
// paced binary delivery.
func (p *Peer) Emit(event string, payload any) error {
	if p.dc == nil {
		return fmt.Errorf("data channel not open for session %s", p.sessionID)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(ws.Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}
	if err := p.dc.SendText(string(frame)); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}

	if event == usecase.EventBotReply {
		if reply, ok := payload.(usecase.BotReplyPayload); ok && reply.BotAudio != "" {
			p.queueReplyAudio(reply.BotAudio)
		}
	}
	return nil
}

func (p *Peer) queueReplyAudio(encoded string) {
	wav, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		p.logger.Warn("Failed to decode reply audio",
			zap.String("sessionID", p.sessionID),
			zap.Error(err))
		return
	}
	pcm, _, err := audio.DecodeWAV(wav)
	if err != nil {
		p.logger.Warn("Failed to parse reply audio",
			zap.String("sessionID", p.sessionID),
			zap.Error(err))
		return
	}

	select {
	case p.audioQueue <- pcm:
	default:
		p.logger.Warn("Audio queue full, dropping utterance",
			zap.String("sessionID", p.sessionID))
	}
}

// paceAudio streams queued utterances as 20ms binary frames, sleeping
// against an accumulated deadline so playback stays real-time even when
// individual sends are fast.
func (p *Peer) paceAudio() {
	for {
		select {
		case <-p.done:
			return
		case pcm := <-p.audioQueue:
			expected := time.Now()
			for off := 0; off < len(pcm); off += frameBytes {
				end := off + frameBytes
				frame := make([]byte, frameBytes)
				if end > len(pcm) {
					// Pad the tail with silence to keep frame size fixed.
					copy(frame, pcm[off:])
				} else {
					copy(frame, pcm[off:end])
				}

				if err := p.dc.Send(frame); err != nil {
					p.logger.Warn("Failed to send audio frame",
						zap.String("sessionID", p.sessionID),
						zap.Error(err))
					return
				}

				expected = expected.Add(frameDuration)
				if d := time.Until(expected); d > 0 {
					select {
					case <-p.done:
						return
					case <-time.After(d):
					}
				}
			}
		}
	}
}

// handleMessage dispatches one data channel message. Binary frames are
// voice chunks; strings carry the JSON envelope.
func (p *Peer) handleMessage(msg webrtc.DataChannelMessage) {
	if p.session == nil {
		return
	}

	if !msg.IsString {
		p.svc.HandleVoiceChunk(p.session, msg.Data, p)
		return
	}

	var env ws.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		p.logger.Warn("Dropping malformed frame",
			zap.String("sessionID", p.sessionID),
			zap.Error(err))
		return
	}

	switch env.Event {
	case usecase.EventMessage:
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			p.logger.Warn("Dropping malformed message payload",
				zap.String("sessionID", p.sessionID),
				zap.Error(err))
			return
		}
		go p.svc.HandleText(context.Background(), p.session, payload.Text, p)

	case usecase.EventVoiceChunk:
		pcm, err := ws.DecodeVoiceChunk(env.Data)
		if err != nil {
			p.logger.Warn("Dropping malformed voice chunk",
				zap.String("sessionID", p.sessionID),
				zap.Error(err))
			return
		}
		p.svc.HandleVoiceChunk(p.session, pcm, p)

	case usecase.EventEndVoice:
		go p.svc.HandleEndVoice(context.Background(), p.session, p)

	case usecase.EventSelectBot:
		var payload struct {
			Bot string `json:"bot"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			p.logger.Warn("Dropping malformed select_bot payload",
				zap.String("sessionID", p.sessionID),
				zap.Error(err))
			return
		}
		p.svc.SelectBot(p.session, payload.Bot, p)

	case usecase.EventPing:
		p.svc.HandlePing(p)

	default:
		p.logger.Warn("Unknown event",
			zap.String("sessionID", p.sessionID),
			zap.String("event", env.Event))
	}
}
