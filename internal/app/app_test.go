package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/NewsBrief/internal/chat"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>Wire story</title><link>https://wire.example/1</link><pubDate>Wed, 01 May 2024 09:00:00 GMT</pubDate></item>
<item><title>Local story</title><link>https://local.example/1</link><pubDate>Wed, 01 May 2024 11:00:00 GMT</pubDate></item>
</channel></rss>`

func TestCompleterRequiresCredential(t *testing.T) {
	assert.Nil(t, Completer(&config.Config{}))
	assert.NotNil(t, Completer(&config.Config{OpenAIAPIKey: "sk", OpenAIModel: "m"}))
}

func TestAppEndToEndMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	cfg := &config.Config{
		CacheTTL:         time.Minute,
		FeedTimeout:      time.Second,
		FeedItemLimit:    5,
		Feeds:            []config.FeedSource{{Name: "Reuters", URL: srv.URL}, {Name: "Down", URL: "http://127.0.0.1:1/"}},
		PaywalledSources: []string{"Reuters"},
	}
	a := New(cfg)

	agg, err := a.Cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, agg.Articles, 2)
	assert.Equal(t, "Local story", agg.Articles[0].Title)
	assert.Equal(t, "Wire story", agg.Articles[1].Title)
	for _, ea := range agg.Articles {
		assert.True(t, ea.IsPaywalled)
	}
	assert.Len(t, agg.Summary.KeyPoints, 3)

	again, err := a.Cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, agg, again)

	reply, err := a.Responder.Respond(context.Background(), []chat.Turn{{Role: "user", Content: "What happened today?"}}, agg)
	require.NoError(t, err)
	assert.Contains(t, reply, "there are 2 top stories")
}
