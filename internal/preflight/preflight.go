// Package preflight verifies the environment before a publish run starts.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"kamishibai/internal/auth"
	"kamishibai/internal/config"
	"kamishibai/internal/storage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("FFmpeg", cfg.FFmpegBinary()),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckFileExists("Thumbnail template", cfg.Thumbnail.TemplateImage, false),
	}

	if cfg.Thumbnail.FontPath != "" {
		results = append(results, CheckFileExists("Thumbnail font", cfg.Thumbnail.FontPath, true))
	}

	results = append(results, CheckStorage(ctx, cfg.Storage))
	results = append(results, CheckCredentials(ctx, cfg.YouTube))
	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return true
		}
	}
	return false
}

// CheckBinary verifies that an executable is resolvable on PATH.
func CheckBinary(name, command string) Result {
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileExists verifies that a regular file exists at the path.
func CheckFileExists(name, path string, optional bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Optional: optional, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Optional: optional, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Optional: optional, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Optional: optional, Detail: path}
}

// CheckStorage verifies the bucket is reachable with the configured
// credentials by listing it once.
func CheckStorage(ctx context.Context, cfg config.Storage) Result {
	const name = "Storage bucket"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := storage.NewS3Store(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	keys, err := store.List(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("list %s failed (%v)", cfg.Bucket, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable, %d object(s)", cfg.Bucket, len(keys))}
}

// CheckCredentials verifies that upload credentials load and yield a usable
// access token. It uses a 30-second timeout and a single attempt.
func CheckCredentials(ctx context.Context, cfg config.YouTube) Result {
	const name = "Upload credentials"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tokenSource, err := auth.TokenSource(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	token, err := tokenSource.Token()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("token refresh failed (%v)", err)}
	}
	if !token.Valid() {
		return Result{Name: name, Detail: "token source returned an expired token"}
	}
	return Result{Name: name, Passed: true, Detail: "token valid"}
}
