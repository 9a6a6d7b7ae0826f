package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiopm/config"
)

func TestSignAndVerify(t *testing.T) {
	config.JWTKey = []byte("test-secret")

	exp := time.Now().Add(10 * time.Minute).Unix()
	sig := Sign("deliverables/abc.pdf", exp)

	assert.True(t, Verify("deliverables/abc.pdf", exp, sig))
	assert.False(t, Verify("deliverables/other.pdf", exp, sig))
	assert.False(t, Verify("deliverables/abc.pdf", exp+1, sig))
	assert.False(t, Verify("deliverables/abc.pdf", exp, "deadbeef"))
}

func TestVerifyRejectsExpired(t *testing.T) {
	config.JWTKey = []byte("test-secret")

	exp := time.Now().Add(-time.Minute).Unix()
	sig := Sign("deliverables/abc.pdf", exp)
	assert.False(t, Verify("deliverables/abc.pdf", exp, sig))
}

func TestLocalStoreUploadAndDelete(t *testing.T) {
	store := &LocalStore{Dir: t.TempDir()}

	key, err := store.Upload([]byte("drawing data"), "plan.dwg", "application/acad", "deliverables/proj1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "deliverables/proj1/"))
	assert.True(t, strings.HasSuffix(key, "-plan.dwg"))

	data, err := os.ReadFile(store.Path(key))
	require.NoError(t, err)
	assert.Equal(t, []byte("drawing data"), data)

	require.NoError(t, store.Delete(key))
	_, err = os.Stat(store.Path(key))
	assert.True(t, os.IsNotExist(err))
}

func TestSignedURLShape(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	store := &LocalStore{Dir: t.TempDir()}

	url, err := store.SignedURL("deliverables/proj1/x.pdf", 600)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/files/deliverables/proj1/x.pdf?exp="))
	assert.Contains(t, url, "&sig=")
}
