package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/recall/internal/dagger"
)

// Build and return directory of recall binaries.
//
// The sqlite archive needs cgo, so each target is compiled natively in a
// container of that platform rather than cross compiled.
func (r *Recall) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	platforms := []dagger.Platform{"linux/amd64", "linux/arm64"}

	outputs := dag.Directory()

	for _, platform := range platforms {
		path := string(platform) + "/"

		build := r.goContainer(platform).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/recall"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (r *Recall) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/mindneox/recall/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/mindneox/recall/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/mindneox/recall/pkg/utils.Buildtime=%s'", buildtime),
	}

	return r.Build(ctx, strings.Join(ldflags, " "))
}
