package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/events"
)

func drain(c *client) []outboundFrame {
	var frames []outboundFrame
	for {
		select {
		case msg := <-c.send:
			var f outboundFrame
			if err := json.Unmarshal(msg, &f); err == nil {
				frames = append(frames, f)
			}
		default:
			return frames
		}
	}
}

func frameTypes(frames []outboundFrame) []string {
	types := make([]string, 0, len(frames))
	for _, f := range frames {
		types = append(types, f.Type)
	}
	return types
}

func TestHubRoutesByRecipients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	p1 := newClient(nil, "h1")
	p2 := newClient(nil, "h2")
	other := newClient(nil, "h3")
	hub.bind(p1, "abcdef", "p1")
	hub.bind(p2, "abcdef", "p2")
	hub.bind(other, "zzzzzz", "p1")

	hub.Notify(context.Background(), []events.Event{
		{Kind: events.KindRosterUpdated, SessionCode: "abcdef"},
		{Kind: events.KindHandUpdated, SessionCode: "abcdef", Recipients: []string{"p2"}},
		{Kind: events.KindRoomState, SessionCode: "abcdef", Recipients: []string{"p1", "ghost"}},
		{Kind: events.KindRosterUpdated, SessionCode: "nobody"},
	})

	assert.Equal(t, []string{"roster_updated", "room_state"}, frameTypes(drain(p1)))
	assert.Equal(t, []string{"roster_updated", "hand_updated"}, frameTypes(drain(p2)))
	assert.Empty(t, drain(other))
}

func TestHubRebindReplacesConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	old := newClient(nil, "h1")
	fresh := newClient(nil, "h2")

	hub.bind(old, "abcdef", "p1")
	hub.bind(fresh, "abcdef", "p1")
	assert.Equal(t, 1, hub.Connections("abcdef"))

	hub.Notify(context.Background(), []events.Event{
		{Kind: events.KindRosterUpdated, SessionCode: "abcdef"},
	})
	assert.Empty(t, drain(old))
	assert.Len(t, drain(fresh), 1)

	assert.False(t, hub.unbind(old))
	assert.True(t, hub.unbind(fresh))
	assert.Zero(t, hub.Connections("abcdef"))
}

func TestHubBindMovesClientBetweenSessions(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newClient(nil, "h1")

	hub.bind(c, "aaaaaa", "p1")
	hub.bind(c, "bbbbbb", "t1")

	assert.Zero(t, hub.Connections("aaaaaa"))
	assert.Equal(t, 1, hub.Connections("bbbbbb"))
	assert.Equal(t, "t1", c.participantID)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newClient(nil, "h1")
	hub.bind(c, "abcdef", "p1")

	evs := make([]events.Event, sendBuffer+5)
	for i := range evs {
		evs[i] = events.Event{Kind: events.KindRoomState, SessionCode: "abcdef"}
	}

	hub.Notify(context.Background(), evs)

	require.Len(t, c.send, sendBuffer)
	assert.Len(t, drain(c), sendBuffer)
}

func TestHubEncodesPayload(t *testing.T) {
	hub := NewHub(nil)
	c := newClient(nil, "h1")
	hub.bind(c, "abcdef", "p1")

	hub.Notify(context.Background(), []events.Event{{
		Kind:        events.KindVotesUpdated,
		SessionCode: "abcdef",
		Payload:     events.VotesPayload{RoomID: "r1", Tally: map[string]int{"p2": 1}},
	}})

	msg := <-c.send
	var frame struct {
		Type string              `json:"type"`
		Data events.VotesPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, "votes_updated", frame.Type)
	assert.Equal(t, "r1", frame.Data.RoomID)
	assert.Equal(t, map[string]int{"p2": 1}, frame.Data.Tally)
}
