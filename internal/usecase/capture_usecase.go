package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/schedule-capture-service/internal/entity"
	"github.com/user/schedule-capture-service/internal/repository"
	"github.com/user/schedule-capture-service/internal/resolve"
	"github.com/user/schedule-capture-service/pkg/config"
)

// GenerationError wraps any stage failure. It is the only error that
// reaches the process boundary and terminates the run with exit code 1.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("schedule generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PortalFactory acquires the browser-backed portal session. The use case
// owns the session for the run and releases it on every exit route.
type PortalFactory func() (repository.PortalRepository, error)

// ScheduleCapture runs one complete capture for one identity.
type ScheduleCapture interface {
	Run(ctx context.Context) (*entity.CaptureResult, error)
}

type captureUseCase struct {
	newPortal PortalFactory
	stamper   repository.StamperRepository
	cfg       *config.Config
	stdin     io.Reader // debug-mode release gate
	now       func() time.Time
}

// NewScheduleCapture creates the capture use case.
func NewScheduleCapture(factory PortalFactory, stamper repository.StamperRepository, cfg *config.Config, stdin io.Reader) ScheduleCapture {
	return &captureUseCase{
		newPortal: factory,
		stamper:   stamper,
		cfg:       cfg,
		stdin:     stdin,
		now:       time.Now,
	}
}

// Run sequences the stages: resolve date and name, authenticate, navigate,
// capture, post-process, place the artifact. Stage failures come back as
// *GenerationError; the browser is released unconditionally.
func (uc *captureUseCase) Run(ctx context.Context) (result *entity.CaptureResult, err error) {
	slog.Info("Starting schedule capture")

	if err := uc.validate(); err != nil {
		return nil, err
	}
	slog.Info("Configuration validated", "name", uc.cfg.FullName, "program", uc.cfg.Program)

	targetDate := resolve.TargetDate(resolve.WeekInputs{
		TargetWeek:  uc.cfg.TargetWeek,
		TargetDate:  uc.cfg.TargetDate,
		WeeksOffset: uc.cfg.WeeksOffset,
	}, uc.now())
	filename := resolve.ArtifactName(uc.cfg.FullName, uc.cfg.Program, targetDate)
	slog.Info("Artifact name resolved", "filename", filename)

	saveDir, aerr := filepath.Abs(uc.cfg.SaveFolder)
	if aerr != nil {
		saveDir = uc.cfg.SaveFolder
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return nil, &GenerationError{Stage: "save folder", Err: err}
	}
	slog.Info("Save folder ready", "path", saveDir)

	portal, perr := uc.newPortal()
	if perr != nil {
		return nil, &GenerationError{Stage: "browser start", Err: perr}
	}
	defer uc.release(portal)
	slog.Info("Browser started")

	if lerr := portal.Login(ctx, entity.Credentials{Username: uc.cfg.Username, Password: uc.cfg.Password}); lerr != nil {
		return nil, &GenerationError{Stage: "login", Err: lerr}
	}
	slog.Info("Login successful")

	slog.Info("Navigating to schedule")
	if nerr := portal.OpenSchedule(ctx); nerr != nil {
		return nil, &GenerationError{Stage: "navigation", Err: nerr}
	}
	slog.Info("Navigation successful")

	doc, cerr := portal.CaptureWeek(ctx, targetDate)
	if cerr != nil {
		return nil, &GenerationError{Stage: "capture", Err: cerr}
	}

	return uc.deliver(doc, filename, saveDir)
}

func (uc *captureUseCase) validate() error {
	var missing []string
	if uc.cfg.Username == "" {
		missing = append(missing, "IMT_USERNAME")
	}
	if uc.cfg.Password == "" {
		missing = append(missing, "IMT_PASSWORD")
	}
	if uc.cfg.FullName == "" {
		missing = append(missing, "NOM_PRENOM")
	}
	if uc.cfg.Program == "" {
		missing = append(missing, "PROMO")
	}
	if len(missing) > 0 {
		return &GenerationError{
			Stage: "configuration",
			Err:   fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// release closes the browser exactly once. In debug mode release is
// deferred until the operator confirms, so the session can be inspected.
func (uc *captureUseCase) release(portal repository.PortalRepository) {
	if uc.cfg.Debug {
		slog.Info("Debug mode: browser left open for inspection, press Enter to close")
		_, _ = bufio.NewReader(uc.stdin).ReadString('\n')
	}
	if err := portal.Close(); err != nil {
		slog.Warn("Error closing browser", "error", err)
	} else {
		slog.Info("Browser closed")
	}
}

// deliver stamps the captured document and places the artifact. Overlay
// validation failures abort with no partial write; any other stamping
// failure still delivers the unmodified capture (byte-copy fallback) while
// marking the run degraded.
func (uc *captureUseCase) deliver(doc []byte, filename, saveDir string) (*entity.CaptureResult, error) {
	tmpPath := filepath.Join(saveDir, strings.TrimSuffix(filename, ".pdf")+"_tmp.pdf")

	overlay := entity.Overlay{Message: uc.cfg.Message, SignaturePath: uc.cfg.SignatureFile}
	stamped, serr := uc.stamper.Stamp(doc, overlay)
	if serr != nil {
		if errors.Is(serr, repository.ErrEmptyMessage) || errors.Is(serr, repository.ErrNoPages) {
			return nil, &GenerationError{Stage: "post-processing", Err: serr}
		}
		slog.Warn("Post-processing failed, delivering unmodified capture", "error", serr)
		if werr := os.WriteFile(tmpPath, doc, 0o644); werr != nil {
			slog.Error("Could not write fallback copy", "path", tmpPath, "error", werr)
			return nil, &GenerationError{Stage: "post-processing", Err: errors.Join(serr, werr)}
		}
		finalPath := safeRename(tmpPath, filename, saveDir)
		slog.Info("Copied original PDF to output location as fallback", "path", finalPath)
		return &entity.CaptureResult{Path: finalPath, Degraded: true},
			&GenerationError{Stage: "post-processing", Err: serr}
	}

	if werr := os.WriteFile(tmpPath, stamped, 0o644); werr != nil {
		return nil, &GenerationError{Stage: "artifact write", Err: werr}
	}
	finalPath := safeRename(tmpPath, filename, saveDir)

	slog.Info("Schedule PDF generated", "file", filepath.Base(finalPath), "folder", saveDir)
	return &entity.CaptureResult{Path: finalPath}, nil
}

// safeRename moves the temporary output to its final name, retrying once
// with an ASCII-safe name. A second failure leaves the document at its
// temporary path; file placement is never fatal once an artifact exists.
func safeRename(tmpPath, filename, saveDir string) string {
	finalPath := filepath.Join(saveDir, filename)
	err := os.Rename(tmpPath, finalPath)
	if err == nil {
		slog.Info("PDF renamed", "name", filename)
		return finalPath
	}
	slog.Warn("Could not rename PDF", "name", filename, "error", err)

	fallback := resolve.ASCIIFallbackName(filename)
	fallbackPath := filepath.Join(saveDir, fallback)
	err = os.Rename(tmpPath, fallbackPath)
	if err == nil {
		slog.Info("PDF saved with fallback name", "name", fallback)
		return fallbackPath
	}
	slog.Warn("Rename failed, artifact remains at temporary path", "path", tmpPath, "error", err)
	return tmpPath
}
