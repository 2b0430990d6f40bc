package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testEvent() domain.SurveySubmittedEvent {
	return domain.SurveySubmittedEvent{
		SurveyID:    "3f1c",
		AgeRange:    "26 – 35 anos",
		Region:      "São Paulo - Centro",
		PriceRange:  "R$ 51 – R$ 80",
		WineType:    []string{"Tinto"},
		CompletedAt: time.Date(2025, 3, 10, 15, 10, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("3f1c"), msg.Key)
	assert.Contains(t, string(msg.Value), `"surveyId":"3f1c"`)
	assert.Contains(t, string(msg.Value), `"region":"São Paulo - Centro"`)
	assert.NotContains(t, string(msg.Value), "email")
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(EventTypeSubmitted), msg.Headers[0].Value)
	assert.Equal(t, "completed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-03-10T15:10:00Z"), msg.Headers[1].Value)
}

func TestWriter_PublishSubmitted(t *testing.T) {
	rec := &recordingWriter{}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.PublishSubmitted(context.Background(), testEvent()))
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []byte("3f1c"), rec.msgs[0].Key)

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestWriter_PublishSubmittedError(t *testing.T) {
	rec := &recordingWriter{err: errors.New("broker down")}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.PublishSubmitted(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
