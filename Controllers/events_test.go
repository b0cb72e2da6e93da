package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStreamRequiresLogin(t *testing.T) {
	app, _, _ := setupTest(t)

	resp := doRequest(t, app, "GET", "/api/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
