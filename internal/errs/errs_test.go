package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad id"), http.StatusBadRequest},
		{NotFound("no such appointment"), http.StatusNotFound},
		{Conflict("slot unavailable"), http.StatusConflict},
		{Authorization("clients only"), http.StatusForbidden},
		{Internal("store down", errors.New("dial tcp")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("store down", errors.New("dial tcp 10.0.0.1: refused"))
	assert.NotContains(t, Message(err), "10.0.0.1")
	assert.Equal(t, "slot unavailable", Message(Conflict("slot unavailable")))
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := Conflict("duplicate review")
	wrapped := errors.Join(errors.New("outer"), err)
	assert.Equal(t, KindConflict, KindOf(wrapped))
}
