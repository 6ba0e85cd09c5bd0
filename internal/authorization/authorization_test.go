package authorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	userentity "github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

func TestCan_Anonymous(t *testing.T) {
	c := Anonymous{}
	assert.True(t, Can(c, FeatureReadActivationToken))
	assert.True(t, Can(c, FeatureCreateSession))
	assert.True(t, Can(c, FeatureCreateUser))
	assert.False(t, Can(c, FeatureReadSession))
}

func TestCan_Authenticated(t *testing.T) {
	c := Authenticated{User: &userentity.User{Features: []string{FeatureCreateSession, FeatureReadSession}}}
	assert.True(t, Can(c, FeatureReadSession))
	assert.False(t, Can(c, FeatureReadActivationToken))
	assert.False(t, Can(c, FeatureCreateUser))
}

func TestCan_NilCallers(t *testing.T) {
	assert.False(t, Can(nil, FeatureCreateSession))
	assert.False(t, Can(Authenticated{}, FeatureCreateSession))
}

func TestCallerContext(t *testing.T) {
	assert.IsType(t, Anonymous{}, CallerFrom(context.Background()))

	c := Authenticated{User: &userentity.User{Username: "abrxao"}}
	got := CallerFrom(WithCaller(context.Background(), c))
	assert.Equal(t, c, got)
}
