// Package testinfra starts the MongoDB and Redis containers used by the
// storage tests. Containers are started on first use and shared by every test
// in the same test binary, call Terminate from TestMain to stop them.
package testinfra

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mongoImage   = "mongo:7"
	mongoPort    = "27017/tcp"
	redisImage   = "redis:7-alpine"
	redisPort    = "6379/tcp"
	startTimeout = 90 * time.Second
)

type sharedContainer struct {
	once      sync.Once
	container testcontainers.Container
	endpoint  string
	err       error
}

var (
	mongoContainer sharedContainer
	redisContainer sharedContainer
)

// SkipIfNoDocker skips the test in short mode or when the docker daemon is not reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// MongoURI returns a mongodb:// uri of the shared container.
func MongoURI(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	mongoContainer.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        mongoImage,
			ExposedPorts: []string{mongoPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(mongoPort),
				wait.ForLog("Waiting for connections"),
			).WithStartupTimeout(startTimeout),
		}
		mongoContainer.start(ctx, req)
		if mongoContainer.err == nil {
			mongoContainer.endpoint, mongoContainer.err = mongoContainer.container.PortEndpoint(ctx, mongoPort, "mongodb")
		}
	})
	if mongoContainer.err != nil {
		t.Fatalf("Failed to start mongo container: %v", mongoContainer.err)
	}
	return mongoContainer.endpoint
}

// RedisAddr returns the host:port of the shared container.
func RedisAddr(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	redisContainer.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{redisPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(redisPort),
				wait.ForLog("Ready to accept connections"),
			).WithStartupTimeout(startTimeout),
		}
		redisContainer.start(ctx, req)
		if redisContainer.err == nil {
			redisContainer.endpoint, redisContainer.err = redisContainer.container.PortEndpoint(ctx, redisPort, "")
		}
	})
	if redisContainer.err != nil {
		t.Fatalf("Failed to start redis container: %v", redisContainer.err)
	}
	return redisContainer.endpoint
}

func (s *sharedContainer) start(ctx context.Context, req testcontainers.ContainerRequest) {
	s.container, s.err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

// Terminate stops every container that was started.
func Terminate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, s := range []*sharedContainer{&mongoContainer, &redisContainer} {
		if s.container != nil {
			_ = s.container.Terminate(ctx)
		}
	}
}
