package httpclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	client := New()

	assert.Equal(t, 10*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 100, transport.MaxIdleConns)
	assert.Equal(t, 10, transport.MaxIdleConnsPerHost)
	assert.False(t, transport.DisableKeepAlives)
}

func TestNew_Options(t *testing.T) {
	client := New(
		WithTimeout(3*time.Second),
		WithMaxIdleConnsPerHost(2),
		WithoutKeepAlives(),
	)

	assert.Equal(t, 3*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 2, transport.MaxIdleConnsPerHost)
	assert.True(t, transport.DisableKeepAlives)
}

type fakeTransport struct{}

func (fakeTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, nil }

func TestNew_CustomTransport(t *testing.T) {
	rt := fakeTransport{}
	client := New(WithTransport(rt))

	assert.Equal(t, rt, client.Transport)
}
