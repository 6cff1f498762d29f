package main

import (
	"context"
	"fmt"

	"dagger/recall/internal/dagger"
)

// Image returns a runtime container for one platform with the recall binary
// as its entrypoint, serving on port 8000.
func (r *Recall) Image(
	ctx context.Context,

	// Target platform, e.g. "linux/amd64"
	// +default="linux/amd64"
	platform dagger.Platform,

	// Version string of build
	// +default="dev"
	version string,

	// Git commit SHA of build
	// +default="HEAD"
	commit string,
) *dagger.Container {
	bin := r.BuildRelease(ctx, version, commit).File(string(platform) + "/recall")

	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("debian:bookworm-slim").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "--no-install-recommends", "ca-certificates"}).
		WithFile("/usr/local/bin/recall", bin).
		WithEnvVariable("RECALL_API_LISTEN", ":8000").
		WithExposedPort(8000).
		WithEntrypoint([]string{"recall"}).
		WithDefaultArgs([]string{"serve", "--json-logs"})
}

// Publish pushes a multi-platform image to address (e.g.
// "ghcr.io/mindneox/recall:v1.0.0") and returns the pushed reference.
func (r *Recall) Publish(
	ctx context.Context,

	// Image address including tag
	address string,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,

	// Registry username
	// +optional
	username string,

	// Registry password or token
	// +optional
	password *dagger.Secret,
) (string, error) {
	platforms := []dagger.Platform{"linux/amd64", "linux/arm64"}

	variants := make([]*dagger.Container, 0, len(platforms))
	for _, platform := range platforms {
		variants = append(variants, r.Image(ctx, platform, version, commit))
	}

	ctr := dag.Container()
	if password != nil {
		ctr = ctr.WithRegistryAuth(address, username, password)
	}

	ref, err := ctr.Publish(ctx, address, dagger.ContainerPublishOpts{
		PlatformVariants: variants,
	})
	if err != nil {
		return "", fmt.Errorf("could not publish %s: %w", address, err)
	}
	return ref, nil
}
