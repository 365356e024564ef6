package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	client := &fakeClient{reply: usageReply("answer", 10, 5)}
	conv := newTestConversation(client)

	_, err := conv.Send(context.Background(), "hello")
	require.NoError(t, err)
	seedTurns(conv, 23)
	require.NoError(t, conv.EnsureCoverage(context.Background()))

	blob, err := json.Marshal(conv.Export())
	require.NoError(t, err)

	restored := newTestConversation(client)
	restored.Import(blob)

	assert.Equal(t, conv.Turns(), restored.Turns())
	assert.Equal(t, conv.Summaries(), restored.Summaries())
	assert.Equal(t, conv.Policy(), restored.Policy())
	assert.Equal(t, conv.Totals(), restored.Totals())
}

func TestExport_NeverCarriesCredential(t *testing.T) {
	conv := newTestConversation(&fakeClient{})

	blob, err := json.Marshal(conv.Export())
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "sk-test")
	assert.NotContains(t, strings.ToLower(string(blob)), "api_key")

	// And importing never clears the runtime credential.
	conv.Import(blob)
	assert.Equal(t, "sk-test", conv.Config().APIKey)
}

func TestImport_UnrecognizedShapeIsNoOp(t *testing.T) {
	client := &fakeClient{reply: usageReply("answer", 1, 1)}
	conv := newTestConversation(client)
	_, err := conv.Send(context.Background(), "hello")
	require.NoError(t, err)

	before := conv.Turns()
	notified := 0
	conv.OnChange(func(Snapshot) { notified++ })

	conv.Import([]byte("not json at all"))
	conv.Import([]byte(`[1, 2, 3]`))

	assert.Equal(t, before, conv.Turns())
	assert.Zero(t, notified, "nothing to import must not notify")
}

func TestImport_FiltersMalformedTurns(t *testing.T) {
	conv := newTestConversation(&fakeClient{})

	conv.Import([]byte(`{
		"schema_version": 1,
		"turns": [
			{"role": "user", "text": "valid"},
			{"role": "system", "text": "dropped: unknown role"},
			{"role": "user", "text": ""},
			{"role": "assistant", "text": "kept even without usage"}
		]
	}`))

	turns := conv.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "valid", turns[0].Text)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.False(t, turns[1].HasUsage())
}

func TestImport_MissingFieldsKeepDefaults(t *testing.T) {
	conv := newTestConversation(&fakeClient{})

	// An old snapshot with nothing but a version tag: config, policy, and
	// preamble all keep their current values.
	conv.Import([]byte(`{"schema_version": 1}`))

	assert.Equal(t, "gpt-3.5-turbo", conv.Config().Model)
	assert.Equal(t, DefaultPolicy(), conv.Policy())
	assert.Empty(t, conv.Turns())
}

func TestImport_DropsNonContiguousSummaries(t *testing.T) {
	conv := newTestConversation(&fakeClient{})

	conv.Import([]byte(`{
		"schema_version": 3,
		"summaries": [
			{"from_index": 0, "to_index": 9, "text": "first"},
			{"from_index": 15, "to_index": 24, "text": "gap: dropped"},
			{"from_index": 25, "to_index": 30, "text": "after the gap: dropped too"}
		]
	}`))

	summaries := conv.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "first", summaries[0].Text)
}

func TestImport_Idempotent(t *testing.T) {
	client := &fakeClient{reply: usageReply("answer", 10, 5)}
	conv := newTestConversation(client)
	_, err := conv.Send(context.Background(), "hello")
	require.NoError(t, err)

	blob, err := json.Marshal(conv.Export())
	require.NoError(t, err)

	conv.Import(blob)
	conv.Import(blob)

	again, err := json.Marshal(conv.Export())
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(again))
}
