package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/crashpipe/adapters"
	"github.com/momentics/crashpipe/api"
)

func TestMemorySink_RedeliveryDeduplicated(t *testing.T) {
	sink := adapters.NewMemorySink()
	record := &api.Record{Kind: "error", Message: "boom"}

	id1, err := sink.TrackException(record, nil, nil)
	require.NoError(t, err)
	id2, err := sink.TrackException(record, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "at-least-once redelivery must deduplicate")
	assert.Equal(t, 1, sink.Len())
}

func TestMemorySink_AttachmentsReplaceOnRedelivery(t *testing.T) {
	sink := adapters.NewMemorySink()
	id, err := sink.TrackException(&api.Record{Kind: "error", Message: "x"}, nil, nil)
	require.NoError(t, err)

	first := []api.Attachment{{Name: "a", ContentType: "text/plain", Payload: []byte("1")}}
	second := []api.Attachment{{Name: "b", ContentType: "text/plain", Payload: []byte("2")}}
	require.NoError(t, sink.SendErrorAttachments(id, first))
	require.NoError(t, sink.SendErrorAttachments(id, second))

	atts := sink.AttachmentsFor(id)
	require.Len(t, atts, 1)
	assert.Equal(t, "b", atts[0].Name)
}

func TestMemorySink_UnknownReport(t *testing.T) {
	sink := adapters.NewMemorySink()
	err := sink.SendErrorAttachments("nope", []api.Attachment{{ContentType: "text/plain", Payload: []byte("x")}})
	assert.Error(t, err)
	_, err = sink.BuildHandledErrorReport("nope")
	assert.Error(t, err)
}

func TestMemorySink_BuildHandledErrorReport(t *testing.T) {
	sink := adapters.NewMemorySink()
	record := &api.Record{Kind: "error", Message: "handled"}
	id, err := sink.TrackException(record, nil, nil)
	require.NoError(t, err)

	rep, err := sink.BuildHandledErrorReport(id)
	require.NoError(t, err)
	assert.False(t, rep.IsCrash)
	assert.Same(t, record, rep.Record)
}
