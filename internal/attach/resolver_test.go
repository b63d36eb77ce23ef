package attach_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/internal/attach"
)

func TestResolver_DisabledByDefault(t *testing.T) {
	r := attach.NewResolver()
	r.SetProvider(func(*api.Report) ([]api.Attachment, error) {
		t.Fatal("provider must not run while disabled")
		return nil, nil
	})
	assert.Nil(t, r.Resolve(&api.Report{ID: "r1"}))
}

func TestResolver_NoProvider(t *testing.T) {
	r := attach.NewResolver()
	r.SetEnabled(true)
	assert.Nil(t, r.Resolve(&api.Report{ID: "r1"}))
}

func TestResolver_ResolvesAndFilters(t *testing.T) {
	r := attach.NewResolver()
	r.SetEnabled(true)
	r.SetProvider(func(rep *api.Report) ([]api.Attachment, error) {
		return []api.Attachment{
			{Name: "log.txt", ContentType: "text/plain", Payload: []byte("tail")},
			{Name: "empty", ContentType: "text/plain"},            // dropped: no payload
			{Name: "untyped", Payload: []byte{0x1}},               // dropped: no content type
			{Name: "shot.png", ContentType: "image/png", Payload: []byte{0x89}},
		}, nil
	})
	atts := r.Resolve(&api.Report{ID: "r1"})
	assert.Len(t, atts, 2)
	assert.Equal(t, "log.txt", atts[0].Name)
	assert.Equal(t, "shot.png", atts[1].Name)
}

func TestResolver_ProviderErrorSwallowed(t *testing.T) {
	r := attach.NewResolver()
	r.SetEnabled(true)
	r.SetProvider(func(*api.Report) ([]api.Attachment, error) {
		return nil, fmt.Errorf("disk unavailable")
	})
	assert.Nil(t, r.Resolve(&api.Report{ID: "r1"}))
}

func TestResolver_ProviderPanicSwallowed(t *testing.T) {
	r := attach.NewResolver()
	r.SetEnabled(true)
	r.SetProvider(func(*api.Report) ([]api.Attachment, error) {
		panic("callback bug")
	})
	assert.Nil(t, r.Resolve(&api.Report{ID: "r1"}))
}
