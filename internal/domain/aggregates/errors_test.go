package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Wrap(CodeInternal, "repo.create", errors.New(`pq: relation "contact" does not exist`))
	agg, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "Internal server error.", agg.PublicMessage())
}

func TestPublicMessageKeepsWrittenInternalMessage(t *testing.T) {
	err := NewError(CodeInternal, "auth.register", "Registration failed.", errors.New("disk full"))
	agg, _ := As(err)
	assert.Equal(t, "Registration failed.", agg.PublicMessage())
}

func TestCodeOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("auth.register", "Username already exists."))
	assert.True(t, IsCode(err, CodeConflict))
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
