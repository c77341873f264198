package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"Hacknox/config"

	"github.com/docker/docker/api/types/container"
	imagetypes "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/rs/zerolog/log"
)

// ErrInfected is returned when the scanner flags an archive.
var ErrInfected = errors.New("archive failed the malware scan")

// ArchiveScanner inspects an uploaded archive on local disk before it is stored.
type ArchiveScanner interface {
	Scan(ctx context.Context, path string) error
}

var Scanner ArchiveScanner = NoopScanner{}

// NoopScanner accepts everything. Used when SCANNER=none.
type NoopScanner struct{}

func (NoopScanner) Scan(context.Context, string) error { return nil }

var DockerClient *client.Client

// InitScanner connects to the Docker daemon and makes sure the scanner image is present.
func InitScanner(ctx context.Context, cfg *config.Config) error {
	if cfg.Scanner != "docker" {
		log.Warn().Str("scanner", cfg.Scanner).Msg("archive scanning disabled")
		Scanner = NoopScanner{}
		return nil
	}
	var err error
	DockerClient, err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("connect to docker daemon: %w", err)
	}
	if _, err := DockerClient.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}
	if err := ensureImage(ctx, cfg.ScannerImage); err != nil {
		return err
	}
	Scanner = &DockerScanner{Client: DockerClient, Image: cfg.ScannerImage, Timeout: 2 * time.Minute}
	log.Info().Str("image", cfg.ScannerImage).Msg("archive scanner ready")
	return nil
}

func ensureImage(ctx context.Context, ref string) error {
	pullCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	rc, err := DockerClient.ImagePull(pullCtx, ref, imagetypes.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %q: %w", ref, err)
	}
	defer rc.Close()
	_, _ = io.Copy(io.Discard, rc)
	return nil
}

// DockerScanner runs a throwaway ClamAV container with the archive's directory
// mounted read-only. clamscan exits 0 when clean and 1 when it found something.
type DockerScanner struct {
	Client  *client.Client
	Image   string
	Timeout time.Duration
}

func (s *DockerScanner) Scan(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	resp, err := s.Client.ContainerCreate(ctx,
		&container.Config{
			Image:           s.Image,
			Cmd:             []string{"clamscan", "--no-summary", "--infected", "/scan/" + filepath.Base(abs)},
			NetworkDisabled: true,
		},
		&container.HostConfig{
			Binds: []string{filepath.Dir(abs) + ":/scan:ro"},
			Resources: container.Resources{
				Memory:   1024 * 1024 * 1024,
				NanoCPUs: 1000000000,
			},
		},
		nil, nil, "")
	if err != nil {
		return fmt.Errorf("create scan container: %w", err)
	}
	defer func() {
		// Removal must run even when ctx has been cancelled.
		rmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Client.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			log.Warn().Err(err).Str("container", resp.ID).Msg("remove scan container")
		}
	}()

	if err := s.Client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start scan container: %w", err)
	}

	statusCh, errCh := s.Client.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return fmt.Errorf("wait for scan container: %w", err)
	case status := <-statusCh:
		switch status.StatusCode {
		case 0:
			return nil
		case 1:
			return ErrInfected
		default:
			return fmt.Errorf("scanner exited with status %d", status.StatusCode)
		}
	}
}
