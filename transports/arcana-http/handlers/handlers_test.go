package handlers

import (
	"context"
	"os"
	"testing"

	arcana "github.com/arcanahq/arcana"
	"github.com/arcanahq/arcana/configstore"
	"github.com/arcanahq/arcana/guidelines"
	"github.com/arcanahq/arcana/schemas"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

// mockLogger is a mock implementation of schemas.Logger for testing
type mockLogger struct{}

func (mockLogger) Debug(msg string) {}
func (mockLogger) Info(msg string)  {}
func (mockLogger) Warn(msg string)  {}
func (mockLogger) Error(err error)  {}

// newRequestCtx builds a request context initialized the way a served
// request would be. Handlers pass the ctx down as a context.Context, and a
// zero-valued RequestCtx has no server attached, so Done would panic.
func newRequestCtx() *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) APIResponse {
	t.Helper()
	var envelope APIResponse
	require.NoError(t, sonic.Unmarshal(ctx.Response.Body(), &envelope))
	return envelope
}

func TestSendJSONEnvelope(t *testing.T) {
	ctx := newRequestCtx()
	SendJSON(ctx, map[string]string{"hello": "world"}, mockLogger{})

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	envelope := decodeEnvelope(t, ctx)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
}

func TestSendErrorEnvelope(t *testing.T) {
	ctx := newRequestCtx()
	SendError(ctx, fasthttp.StatusBadRequest, "bad input", mockLogger{})

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
	assert.Equal(t, "bad input", envelope.Message)
}

func TestChainMiddlewaresOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	handler := ChainMiddlewares(func(ctx *fasthttp.RequestCtx) {
		order = append(order, "handler")
	}, mw("first"), mw("second"))

	handler(newRequestCtx())
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRecoverMiddlewareConvertsPanic(t *testing.T) {
	handler := RecoverMiddleware(mockLogger{})(func(ctx *fasthttp.RequestCtx) {
		panic("boom")
	})

	ctx := newRequestCtx()
	handler(ctx)

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
}

func newInterpretationHandler(t *testing.T) *InterpretationHandler {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	client := arcana.Init(arcana.ClientConfig{Logger: mockLogger{}})
	return NewInterpretationHandler(client, mockLogger{})
}

func TestGenerateInterpretationValidation(t *testing.T) {
	handler := newInterpretationHandler(t)

	ctx := newRequestCtx()
	ctx.Request.SetBody([]byte(`{"card_interpretations":"The Fool"}`))
	handler.generateInterpretation(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequestCtx()
	ctx.Request.SetBody([]byte(`not json`))
	handler.generateInterpretation(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestGenerateInterpretationFallsBackWithoutProviders(t *testing.T) {
	handler := newInterpretationHandler(t)

	body, err := sonic.Marshal(schemas.InterpretationRequest{
		Question:            "What should I focus on today?",
		CardSpread:          "3카드 (과거-현재-미래)",
		CardInterpretations: "The Fool (upright), The Tower (reversed), The Star (upright)",
		SpreadID:            "three-card",
		StyleID:             "spiritual-growth",
	})
	require.NoError(t, err)

	ctx := newRequestCtx()
	ctx.Request.SetBody(body)
	handler.generateInterpretation(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	envelope := decodeEnvelope(t, ctx)
	require.True(t, envelope.Success)

	data, err := sonic.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp schemas.InterpretationResponse
	require.NoError(t, sonic.Unmarshal(data, &resp))
	assert.Contains(t, resp.Interpretation, "What should I focus on today?")
	assert.Contains(t, resp.Interpretation, "Past:")
}

func newProviderHandler(t *testing.T) *ProviderHandler {
	t.Helper()
	store, err := configstore.NewConfigStore(context.Background(), &configstore.Config{
		Enabled: true,
		Type:    configstore.ConfigStoreTypeSQLite,
		Config:  &configstore.SQLiteConfig{Path: ":memory:"},
	}, mockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	client := arcana.Init(arcana.ClientConfig{Store: store, Logger: mockLogger{}})
	return NewProviderHandler(store, client, mockLogger{})
}

func TestSaveProviderValidation(t *testing.T) {
	handler := newProviderHandler(t)

	cases := []string{
		`{"provider":"acme","api_key":"k","max_requests_per_minute":60,"selected_models":["gpt-4"]}`,
		`{"provider":"openai","api_key":"","max_requests_per_minute":60,"selected_models":["gpt-4"]}`,
		`{"provider":"openai","api_key":"k","max_requests_per_minute":0,"selected_models":["gpt-4"]}`,
		`{"provider":"openai","api_key":"k","max_requests_per_minute":60,"selected_models":["unknown-model"]}`,
		`not json`,
	}
	for _, body := range cases {
		ctx := newRequestCtx()
		ctx.Request.SetBody([]byte(body))
		handler.saveProvider(ctx)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "body %s", body)
	}
}

func TestSaveProviderMirrorsKeyAndMasksListing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	handler := newProviderHandler(t)

	ctx := newRequestCtx()
	ctx.Request.SetBody([]byte(`{"provider":"openai","api_key":"sk-test","is_active":true,"max_requests_per_minute":60,"selected_models":["gpt-4"]}`))
	handler.saveProvider(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "sk-test", os.Getenv("OPENAI_API_KEY"))

	ctx = newRequestCtx()
	handler.listProviders(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.NotContains(t, string(ctx.Response.Body()), "sk-test")

	ctx = newRequestCtx()
	ctx.QueryArgs().Set("masked", "false")
	handler.listProviders(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "sk-test")
}

func TestToggleSystemGuidelineThroughHandler(t *testing.T) {
	catalog := guidelines.NewCatalog(nil, mockLogger{})
	handler := NewGuidelineHandler(catalog, mockLogger{})

	systemID := guidelines.SystemGuidelines()[0].ID

	ctx := newRequestCtx()
	ctx.SetUserValue("id", systemID)
	ctx.Request.SetBody([]byte(`{"is_active":false}`))
	handler.toggleGuideline(ctx)

	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	envelope := decodeEnvelope(t, ctx)
	assert.False(t, envelope.Success)
}
