package domain_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
)

func TestContext_Histories(t *testing.T) {
	dc := domain.NewContext()
	require.NotEmpty(t, dc.ID)

	const n = 5
	for i := 0; i < n; i++ {
		dc.AddRequest(domain.NewMessage(fmt.Sprintf("req-%d", i)))
		dc.AddLabel(domain.Label{Flow: "f", Node: fmt.Sprintf("n-%d", i), Priority: 1})
		dc.AddResponse(domain.NewMessage(fmt.Sprintf("resp-%d", i)))
	}

	require.Len(t, dc.Requests, n)
	require.Len(t, dc.Labels, n)
	require.Len(t, dc.Responses, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("req-%d", i), dc.Requests[i].Text)
		assert.Equal(t, fmt.Sprintf("n-%d", i), dc.Labels[i].Node)
		assert.Equal(t, fmt.Sprintf("resp-%d", i), dc.Responses[i].Text)
	}

	last, ok := dc.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "req-4", last.Text)
	assert.Equal(t, n, dc.Turns())
}

func TestContext_LastOnEmpty(t *testing.T) {
	dc := domain.NewContext()

	_, ok := dc.LastRequest()
	assert.False(t, ok)
	_, ok = dc.LastLabel()
	assert.False(t, ok)
	_, ok = dc.LastResponse()
	assert.False(t, ok)
}

func TestContext_RoundTrip(t *testing.T) {
	dc := domain.NewContext()
	dc.AddRequest(domain.NewMessage("Hi"))
	dc.AddLabel(domain.Label{Flow: "greet", Node: "start", Priority: 1})
	dc.AddResponse(domain.Message{Text: "Hello!", Misc: map[string]any{"emoji": "wave"}})
	dc.Misc["name"] = "alice"

	// Scratch must never survive serialization.
	dc.BeginTurn(false)
	dc.Scratch().NextLabel = domain.NewLabel("greet", "hello")

	data, err := dc.Serialize()
	require.NoError(t, err)

	restored, err := domain.DecodeContext([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, dc.ID, restored.ID)
	assert.Equal(t, dc.Labels, restored.Labels)
	assert.Equal(t, dc.Requests, restored.Requests)
	assert.Equal(t, dc.Responses, restored.Responses)
	assert.Equal(t, "alice", restored.Misc["name"])
	assert.Nil(t, restored.Scratch())

	// The serialized form must not leak scratch state either.
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	assert.NotContains(t, raw, "scratch")
}

func TestContext_MiscWritableAfterReload(t *testing.T) {
	// A fresh context has nothing in its Misc bag, so the key is absent
	// from the serialized form. Decoding (and cloning) must still hand
	// back a writable map: processors assign into it directly.
	dc := domain.NewContext()
	dc.AddRequest(domain.NewMessage("Hi"))

	data, err := dc.Serialize()
	require.NoError(t, err)

	restored, err := domain.DecodeContext([]byte(data))
	require.NoError(t, err)
	require.NotNil(t, restored.Misc)

	require.NotPanics(t, func() {
		restored.Misc["name"] = "alice"
	})
	assert.Equal(t, "alice", restored.Misc["name"])

	var raw domain.Context
	clone := raw.Clone()
	require.NotNil(t, clone.Misc)
	require.NotPanics(t, func() {
		clone.Misc["k"] = "v"
	})
}

func TestContext_Clone(t *testing.T) {
	dc := domain.NewContext()
	dc.AddRequest(domain.NewMessage("Hi"))
	dc.Misc["k"] = "v"
	dc.BeginTurn(false)

	clone := dc.Clone()
	require.NotSame(t, dc, clone)
	assert.Equal(t, dc.Requests, clone.Requests)
	assert.Nil(t, clone.Scratch(), "clones start outside any turn")

	clone.Misc["k"] = "changed"
	clone.AddRequest(domain.NewMessage("again"))
	assert.Equal(t, "v", dc.Misc["k"])
	assert.Len(t, dc.Requests, 1)
}

func TestContext_ScratchLifecycle(t *testing.T) {
	dc := domain.NewContext()
	assert.Nil(t, dc.Scratch())

	dc.BeginTurn(true)
	require.NotNil(t, dc.Scratch())
	assert.True(t, dc.Scratch().Validation)

	dc.EndTurn()
	assert.Nil(t, dc.Scratch())
}
