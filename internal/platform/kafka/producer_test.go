package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(Config{}, nil)
	assert.Error(t, err)
}

func TestNewProducerIsLazy(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"127.0.0.1:1"}, ClientID: "vigisan-test"}, nil)
	require.NoError(t, err)
	p.Close()
}
