package activation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation/entity"
)

type activatorFunc func(ctx context.Context, tokenID string) (*entity.Token, error)

func (f activatorFunc) Activate(ctx context.Context, tokenID string) (*entity.Token, error) {
	return f(ctx, tokenID)
}

func TestHandlerUpdate(t *testing.T) {
	id := uuid.New()
	var got string
	h := NewHandler(activatorFunc(func(_ context.Context, tokenID string) (*entity.Token, error) {
		got = tokenID
		return &entity.Token{ID: id}, nil
	}), zap.NewNop().Sugar())

	r := httptest.NewRequest(http.MethodPatch, "/activations/"+id.String(), nil)
	r.SetPathValue("token_id", id.String())
	w := httptest.NewRecorder()
	require.NoError(t, h.Update(w, r))

	assert.Equal(t, id.String(), got)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"used_at"`)
}
