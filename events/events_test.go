package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherNilConnectionIsNoOp(t *testing.T) {
	p := NewPublisher(nil, nil)

	assert.NoError(t, p.PublishDocumentIndexed(DocumentIndexed{DocumentID: "d1"}))
	assert.NoError(t, p.PublishDocumentDeleted(DocumentDeleted{DocumentID: "d1"}))
	assert.NoError(t, p.PublishResponseGenerated(ResponseGenerated{ConfidenceScore: 0.8}))

	// Close on a disabled publisher must also be safe.
	p.Close()
}

func TestConnectEmptyURLDisablesPublishing(t *testing.T) {
	p, err := Connect("", nil)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.NoError(t, p.PublishDocumentIndexed(DocumentIndexed{DocumentID: "d1"}))
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishDocumentIndexed(DocumentIndexed{}))
}
