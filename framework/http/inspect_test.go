package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
)

type Plugin interface{ Name() string }

type plugin string

func (p plugin) Name() string { return string(p) }

func newInspected(t *testing.T) (*container.Container, *routing.Router) {
	t.Helper()
	c := container.New()
	c.Instance(container.KeyOf[Plugin](), plugin("a"))
	c.Bind(container.KeyOf[Plugin](), func(container.Resolver) (any, error) {
		return plugin("b"), nil
	})
	c.SingletonType(container.KeyOf[*url.URL](), func() *url.URL { return &url.URL{} })

	r := routing.New(nil)
	r.Prefix("/container", gohttp.NewInspector(c).Routes)
	return c, r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestInspector_List(t *testing.T) {
	_, r := newInspected(t)

	rr := get(t, r, "/container/bindings")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []struct {
			Index     int    `json:"index"`
			Service   string `json:"service"`
			Strategy  string `json:"strategy"`
			Lifecycle string `json:"lifecycle"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Data, 3)

	assert.Equal(t, "instance", body.Data[0].Strategy)
	assert.Equal(t, "singleton", body.Data[0].Lifecycle)
	assert.Equal(t, "factory", body.Data[1].Strategy)
	assert.Equal(t, "transient", body.Data[1].Lifecycle)
	assert.Equal(t, "type", body.Data[2].Strategy)
	assert.Equal(t, 2, body.Data[2].Index)
	assert.Equal(t, body.Data[0].Service, body.Data[1].Service)
}

func TestInspector_Show(t *testing.T) {
	_, r := newInspected(t)
	name := container.TypeKey(container.KeyOf[Plugin]())

	rr := get(t, r, "/container/bindings/"+url.PathEscape(name))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data gohttp.Binding `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, name, body.Data.Service)
	assert.Equal(t, 2, body.Data.Count)
	assert.True(t, body.Data.Resolvable)
	assert.Len(t, body.Data.Entries, 2)
}

func TestInspector_Show_PointerService(t *testing.T) {
	_, r := newInspected(t)

	rr := get(t, r, "/container/bindings/"+url.PathEscape("*url.URL"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInspector_Show_Unknown(t *testing.T) {
	_, r := newInspected(t)

	rr := get(t, r, "/container/bindings/nope.Missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "nope.Missing")
}

func TestInspector_ReadOnly(t *testing.T) {
	c, r := newInspected(t)
	before := len(c.Registrations())

	get(t, r, "/container/bindings")
	get(t, r, "/container/bindings/"+url.PathEscape("*url.URL"))

	assert.Len(t, c.Registrations(), before)
}
