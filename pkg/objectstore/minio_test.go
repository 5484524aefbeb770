package objectstore_test

import (
	"aviators/pkg/objectstore"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testAccessKey = "minioadmin"
	testSecretKey = "minioadmin"
)

func startMinIO(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     testAccessKey,
				"MINIO_ROOT_PASSWORD": testSecretKey,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return endpoint
}

func TestMinIO(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	endpoint := startMinIO(t)
	ctx := context.Background()

	store, err := objectstore.New(ctx, objectstore.Options{
		Endpoint:  endpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
		Bucket:    "posts",
		Prefix:    "blog",
	})
	require.NoError(t, err)
	require.NoError(t, store.Check(ctx))

	// a second client finds the bucket already there
	_, err = objectstore.New(ctx, objectstore.Options{
		Endpoint: endpoint, AccessKey: testAccessKey, SecretKey: testSecretKey, Bucket: "posts",
	})
	require.NoError(t, err)

	loc, err := store.Export(ctx, "cpl-guide.md", []byte("---\ntitle: CPL\n---\n\nBody\n"))
	require.NoError(t, err)
	require.Equal(t, "s3://posts/blog/cpl-guide.md", loc)

	link, err := store.PresignedURL(ctx, "cpl-guide.md", time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "title: CPL")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := objectstore.New(context.Background(), objectstore.Options{Endpoint: "localhost:9000"})
	require.Error(t, err)
}
