package webrtc

import (
	"testing"

	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/adapters/sessionstore"
	"github.com/prushal/voicegate/adapters/stt"
	"github.com/prushal/voicegate/adapters/tts"
	"github.com/prushal/voicegate/personas"
	"github.com/prushal/voicegate/resolver"
	"github.com/prushal/voicegate/usecase"
)

func newTestService(t *testing.T) *usecase.ConversationService {
	t.Helper()
	logger := zap.NewNop()

	registry, err := personas.NewRegistry(personas.Options{DefaultID: "gmtt"}, logger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := sessionstore.NewMemory()

	return usecase.NewConversationService(
		stt.NewChain(nil, nil, 100, logger),
		tts.NewChain(nil, nil, logger),
		resolver.New(store, nil, nil, logger),
		registry,
		store,
		logger,
	)
}

func TestNewPeerAnswersOffer(t *testing.T) {
	client, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("client peer: %v", err)
	}
	defer client.Close()

	if _, err := client.CreateDataChannel(dataChannelLabel, nil); err != nil {
		t.Fatalf("CreateDataChannel: %v", err)
	}

	offer, err := client.CreateOffer(nil)
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	gathered := webrtc.GatheringCompletePromise(client)
	if err := client.SetLocalDescription(offer); err != nil {
		t.Fatalf("SetLocalDescription: %v", err)
	}
	<-gathered

	peer, answer, err := NewPeer(newTestService(t), "s1", *client.LocalDescription(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewPeer: %v", err)
	}
	defer peer.Close()

	if answer == nil || answer.Type != webrtc.SDPTypeAnswer {
		t.Fatalf("answer = %+v, want SDP answer", answer)
	}
	if answer.SDP == "" {
		t.Error("empty answer SDP")
	}
}

func TestEmitWithoutChannelFails(t *testing.T) {
	p := &Peer{sessionID: "s1", logger: zap.NewNop()}
	if err := p.Emit(usecase.EventPong, usecase.PongPayload{}); err == nil {
		t.Error("Emit without a data channel returned nil, want error")
	}
}
