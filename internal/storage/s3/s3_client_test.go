package s3_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/storage/s3"
)

func TestParseURI(t *testing.T) {
	bucket, key, err := s3.ParseURI("s3://labs/2024/quest.pdf")
	require.NoError(t, err)
	assert.Equal(t, "labs", bucket)
	assert.Equal(t, "2024/quest.pdf", key)

	bucket, key, err = s3.ParseURI("s3://labs")
	require.NoError(t, err)
	assert.Equal(t, "labs", bucket)
	assert.Empty(t, key)

	_, _, err = s3.ParseURI("/tmp/quest.pdf")
	assert.Error(t, err)
	_, _, err = s3.ParseURI("s3:///key")
	assert.Error(t, err)

	assert.True(t, s3.IsURI("s3://b/k"))
	assert.False(t, s3.IsURI("quest.pdf"))
}

func fakeS3(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload_AgainstFakeEndpoint(t *testing.T) {
	srv := fakeS3(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/labs/2024/quest.txt", r.URL.Path)
		_, _ = w.Write([]byte("Glucose 95 mg/dL"))
	})

	store, err := s3.NewS3Client(&config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	}, 1024)
	require.NoError(t, err)

	data, err := store.Download(context.Background(), "labs", "2024/quest.txt")
	require.NoError(t, err)
	assert.Equal(t, "Glucose 95 mg/dL", string(data))
}

func TestDownload_TooLarge(t *testing.T) {
	srv := fakeS3(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})

	store, err := s3.NewS3Client(&config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	}, 16)
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "labs", "big.pdf")
	assert.True(t, errors.Is(err, domain.ErrFileTooLarge))
}

func TestList_SkipsFolderMarkers(t *testing.T) {
	srv := fakeS3(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("list-type"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>labs</Name>
  <Prefix>2024/</Prefix>
  <KeyCount>3</KeyCount>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>2024/</Key><Size>0</Size></Contents>
  <Contents><Key>2024/quest.pdf</Key><Size>10</Size></Contents>
  <Contents><Key>2024/dexa.pdf</Key><Size>10</Size></Contents>
</ListBucketResult>`))
	})

	store, err := s3.NewS3Client(&config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	}, 0)
	require.NoError(t, err)

	keys, err := store.List(context.Background(), "labs", "2024/")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024/quest.pdf", "2024/dexa.pdf"}, keys)
}
