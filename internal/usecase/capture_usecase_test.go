package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/schedule-capture-service/internal/entity"
	"github.com/user/schedule-capture-service/internal/repository"
	"github.com/user/schedule-capture-service/internal/supervisor"
	"github.com/user/schedule-capture-service/pkg/config"
)

type fakePortal struct {
	loginErr   error
	openErr    error
	captureErr error
	doc        []byte

	calls      []string
	closeCount int
	capturedAt string
}

func (f *fakePortal) Login(ctx context.Context, creds entity.Credentials) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakePortal) OpenSchedule(ctx context.Context) error {
	f.calls = append(f.calls, "open")
	return f.openErr
}

func (f *fakePortal) CaptureWeek(ctx context.Context, targetDate string) ([]byte, error) {
	f.calls = append(f.calls, "capture")
	f.capturedAt = targetDate
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.doc, nil
}

func (f *fakePortal) Close() error {
	f.closeCount++
	return nil
}

type fakeStamper struct {
	err error
	out []byte
}

func (f *fakeStamper) Stamp(doc []byte, overlay entity.Overlay) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return append(append([]byte{}, doc...), []byte(" stamped")...), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Username:   "user",
		Password:   "pass",
		FullName:   "GUERRY Roman",
		Program:    "FIPA3R",
		TargetDate: "20250915",
		SaveFolder: t.TempDir(),
		Message:    "Emploi du temps généré automatiquement",
	}
}

func newUseCase(portal *fakePortal, stamper repository.StamperRepository, cfg *config.Config) ScheduleCapture {
	factory := func() (repository.PortalRepository, error) { return portal, nil }
	return NewScheduleCapture(factory, stamper, cfg, strings.NewReader("\n"))
}

func TestRun_Success(t *testing.T) {
	cfg := testConfig(t)
	portal := &fakePortal{doc: []byte("%PDF-raw")}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	result, err := uc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Degraded)
	assert.Equal(t, []string{"login", "open", "capture"}, portal.calls)
	assert.Equal(t, "20250915", portal.capturedAt)
	assert.Equal(t, 1, portal.closeCount)

	assert.Equal(t, "GUERRY Roman – FIPA3R – S38.pdf", filepath.Base(result.Path))
	data, rerr := os.ReadFile(result.Path)
	require.NoError(t, rerr)
	assert.Equal(t, "%PDF-raw stamped", string(data))
}

func TestRun_MissingConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Username = ""
	cfg.Program = ""
	portal := &fakePortal{doc: []byte("x")}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "configuration", gerr.Stage)
	assert.Contains(t, gerr.Error(), "IMT_USERNAME")
	assert.Contains(t, gerr.Error(), "PROMO")
	assert.Empty(t, portal.calls, "no browser work before validation")
	assert.Equal(t, 0, portal.closeCount)
}

func TestRun_LoginFailureReleasesBrowser(t *testing.T) {
	cfg := testConfig(t)
	portal := &fakePortal{loginErr: &repository.NavigationError{Step: "sso button"}}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "login", gerr.Stage)
	var nerr *repository.NavigationError
	assert.ErrorAs(t, err, &nerr)
	assert.Equal(t, []string{"login"}, portal.calls)
	assert.Equal(t, 1, portal.closeCount, "browser released on failure path")
}

func TestRun_CaptureHardFailure(t *testing.T) {
	cfg := testConfig(t)
	portal := &fakePortal{captureErr: &repository.NavigationError{
		Step: "print trigger", Err: repository.ErrNoPrintTrigger,
	}}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, repository.ErrNoPrintTrigger)
	assert.Equal(t, 1, portal.closeCount)

	entries, derr := os.ReadDir(cfg.SaveFolder)
	require.NoError(t, derr)
	assert.Empty(t, entries, "no artifact without a captured document")
}

func TestRun_EmptyMessageNoPartialWrite(t *testing.T) {
	cfg := testConfig(t)
	portal := &fakePortal{doc: []byte("%PDF-raw")}
	stamper := &fakeStamper{err: &repository.ProcessingError{Op: "validation", Err: repository.ErrEmptyMessage}}
	uc := newUseCase(portal, stamper, cfg)

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, repository.ErrEmptyMessage)

	entries, derr := os.ReadDir(cfg.SaveFolder)
	require.NoError(t, derr)
	assert.Empty(t, entries)
}

func TestRun_UnexpectedStampFailureDeliversByteCopy(t *testing.T) {
	cfg := testConfig(t)
	portal := &fakePortal{doc: []byte("%PDF-raw")}
	stamper := &fakeStamper{err: &repository.ProcessingError{Op: "read", Err: errors.New("corrupt xref")}}
	uc := newUseCase(portal, stamper, cfg)

	result, err := uc.Run(context.Background())
	require.NotNil(t, result, "an artifact is produced whenever a capture exists")
	assert.True(t, result.Degraded)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "post-processing", gerr.Stage)

	data, rerr := os.ReadFile(result.Path)
	require.NoError(t, rerr)
	assert.Equal(t, "%PDF-raw", string(data), "byte-for-byte copy of the capture")
	assert.Equal(t, 1, portal.closeCount)
}

func TestRun_MilestonePhrasesLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := testConfig(t)
	portal := &fakePortal{doc: []byte("%PDF-raw")}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	_, err := uc.Run(context.Background())
	require.NoError(t, err)

	// Each milestone phrase drives the supervisor's progress display; a
	// phrase logged twice makes the bar stutter.
	out := strings.ToLower(buf.String())
	for _, m := range supervisor.Milestones {
		assert.LessOrEqual(t, strings.Count(out, m.Phrase), 1, "phrase %q", m.Phrase)
	}
}

func TestRun_FallbackWriteFailureNamesBothCauses(t *testing.T) {
	cfg := testConfig(t)
	// Occupy the temporary path with a directory so the byte-copy write
	// itself fails.
	blocked := filepath.Join(cfg.SaveFolder, "GUERRY Roman – FIPA3R – S38_tmp.pdf")
	require.NoError(t, os.MkdirAll(blocked, 0o755))

	portal := &fakePortal{doc: []byte("%PDF-raw")}
	stamper := &fakeStamper{err: &repository.ProcessingError{Op: "read", Err: errors.New("corrupt xref")}}
	uc := newUseCase(portal, stamper, cfg)

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "corrupt xref")
	assert.ErrorContains(t, err, "is a directory")
	assert.Equal(t, 1, portal.closeCount)
}

func TestRun_RenameFallback(t *testing.T) {
	cfg := testConfig(t)
	// Occupy the final path with a non-empty directory so the first rename
	// fails and the ASCII-safe name is used.
	blocked := filepath.Join(cfg.SaveFolder, "GUERRY Roman – FIPA3R – S38.pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))

	portal := &fakePortal{doc: []byte("%PDF-raw")}
	uc := newUseCase(portal, &fakeStamper{}, cfg)

	result, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GUERRY_Roman_-_FIPA3R_-_S38.pdf", filepath.Base(result.Path))
	_, serr := os.Stat(result.Path)
	assert.NoError(t, serr)
}
