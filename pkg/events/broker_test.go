package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveOne(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishDeliversInOrder(t *testing.T) {
	broker := NewBroker(32, slog.Default())
	sub := broker.Subscribe(ParticipantGroup("12345678"))
	defer broker.Unsubscribe(sub)

	for i := 0; i < 10; i++ {
		err := broker.Publish(ParticipantGroup("12345678"), QuestionPayload{
			Type:     TypeNextQuestion,
			Question: fmt.Sprintf("question %d", i),
		})
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		var payload QuestionPayload
		require.NoError(t, json.Unmarshal(receiveOne(t, sub), &payload))
		assert.Equal(t, fmt.Sprintf("question %d", i), payload.Question)
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	broker := NewBroker(32, slog.Default())
	group := ParticipantGroup("12345678")

	first := broker.Subscribe(group)
	second := broker.Subscribe(group)
	assert.Equal(t, 2, broker.SubscriberCount(group))

	require.NoError(t, broker.Publish(group, MeetingEndedPayload{Type: TypeEndMeeting}))

	for _, sub := range []*Subscription{first, second} {
		var payload MeetingEndedPayload
		require.NoError(t, json.Unmarshal(receiveOne(t, sub), &payload))
		assert.Equal(t, TypeEndMeeting, payload.Type)
	}
}

func TestGroupsAreIsolated(t *testing.T) {
	broker := NewBroker(32, slog.Default())

	host := broker.Subscribe(HostGroup("12345678"))
	other := broker.Subscribe(ParticipantGroup("87654321"))

	require.NoError(t, broker.Publish(HostGroup("12345678"), AnswerSubmittedPayload{Type: TypeAnswerSubmitted}))

	receiveOne(t, host)
	select {
	case <-other.C():
		t.Fatal("message leaked across groups")
	default:
	}
}

func TestSlowSubscriberForceClosed(t *testing.T) {
	broker := NewBroker(2, slog.Default())
	group := ParticipantGroup("12345678")

	slow := broker.Subscribe(group)
	healthy := broker.Subscribe(group)

	// Fill the slow subscriber's buffer, then overflow it.
	for i := 0; i < 3; i++ {
		require.NoError(t, broker.Publish(group, QuestionPayload{Type: TypeNextQuestion, Question: "q"}))
		// Keep the healthy subscriber drained so only the slow one backs up.
		receiveOne(t, healthy)
	}

	// The slow subscriber got the two buffered messages, then was closed.
	receiveOne(t, slow)
	receiveOne(t, slow)
	_, ok := <-slow.C()
	assert.False(t, ok, "overflowed subscription should be closed")

	assert.Equal(t, 1, broker.SubscriberCount(group))

	// The healthy subscriber still receives.
	require.NoError(t, broker.Publish(group, QuestionPayload{Type: TypeNextQuestion, Question: "still here"}))
	receiveOne(t, healthy)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	broker := NewBroker(32, slog.Default())
	group := HostGroup("12345678")

	sub := broker.Subscribe(group)
	broker.Unsubscribe(sub)
	broker.Unsubscribe(sub)

	assert.Equal(t, 0, broker.SubscriberCount(group))
	_, ok := <-sub.C()
	assert.False(t, ok)

	// Publishing to the now-empty group is a no-op, not an error.
	require.NoError(t, broker.Publish(group, AckPayload{Type: TypeSubmitError}))
}

func TestGroupNames(t *testing.T) {
	assert.Equal(t, "meeting_host_12345678", HostGroup("12345678"))
	assert.Equal(t, "meeting_12345678", ParticipantGroup("12345678"))
}
