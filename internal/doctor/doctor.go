// Package doctor runs runtime readiness diagnostics for config, store,
// archive, adapters, and audio capture.
package doctor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rbright/voxtrace/internal/archive"
	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/config"
	"github.com/rbright/voxtrace/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkStore(ctx, cfg.Config))
	checks = append(checks, checkArchive(cfg.Config))
	checks = append(checks, checkEndpoint("stt.endpoint", cfg.Config.STT.URL))
	checks = append(checks, checkEmbedding(cfg.Config))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config))

	return Report{Checks: checks}
}

// checkStore opens and pings the configured SQLite database.
func checkStore(ctx context.Context, cfg config.Config) Check {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}
	return Check{Name: "store", Pass: true, Message: fmt.Sprintf("open at %q", cfg.Store.Path)}
}

// checkArchive validates backend configuration; local backends get a write
// probe.
func checkArchive(cfg config.Config) Check {
	switch cfg.Archive.Backend {
	case "local":
		probe := []byte("voxtrace doctor probe")
		path := cfg.Archive.LocalRoot
		if err := probeLocalArchive(path, probe); err != nil {
			return Check{Name: "archive", Pass: false, Message: err.Error()}
		}
		return Check{Name: "archive", Pass: true, Message: fmt.Sprintf("local root %q is writable", path)}
	case "s3":
		if cfg.Archive.S3Bucket == "" {
			return Check{Name: "archive", Pass: false, Message: "s3 backend configured without a bucket"}
		}
		return Check{Name: "archive", Pass: true, Message: fmt.Sprintf("s3 bucket %q configured", cfg.Archive.S3Bucket)}
	default:
		return Check{Name: "archive", Pass: false, Message: fmt.Sprintf("unknown backend %q", cfg.Archive.Backend)}
	}
}

// checkEndpoint probes an HTTP adapter endpoint for reachability. Any HTTP
// response counts: only connection failures fail the check.
func checkEndpoint(name, url string) Check {
	if strings.TrimSpace(url) == "" {
		return Check{Name: name, Pass: false, Message: "endpoint URL is empty"}
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	resp.Body.Close()
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
}

// checkEmbedding probes the model endpoint unless the spectral strategy makes
// the service optional.
func checkEmbedding(cfg config.Config) Check {
	switch cfg.Embedding.Strategy {
	case "spectral":
		return Check{Name: "embedding", Pass: true, Message: "spectral strategy needs no external service"}
	case "auto":
		probe := checkEndpoint("embedding", cfg.Embedding.URL)
		if !probe.Pass {
			return Check{Name: "embedding", Pass: true,
				Message: fmt.Sprintf("model endpoint unreachable, spectral fallback will serve (%s)", probe.Message)}
		}
		return probe
	default:
		return checkEndpoint("embedding", cfg.Embedding.URL)
	}
}

// checkAudioSelection runs live device selection to surface selection and
// fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

func probeLocalArchive(root string, probe []byte) error {
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("local_root is empty")
	}

	arch, err := archive.NewLocal(root)
	if err != nil {
		return err
	}
	ref, err := arch.Store(context.Background(), probe, "doctor")
	if err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	defer arch.Delete(context.Background(), ref)

	got, err := arch.Load(context.Background(), ref)
	if err != nil {
		return fmt.Errorf("read probe back: %w", err)
	}
	if !bytes.Equal(got, probe) {
		return fmt.Errorf("probe round-trip mismatch")
	}
	return nil
}
